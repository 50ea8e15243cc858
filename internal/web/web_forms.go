package web

import (
	"errors"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Ukrainian UI messages
const (
	msgInvalidForm       = "Недійсна форма"
	msgRegisterInvalid   = "Форма недійсна. Змініть ім'я або пароль"
	msgPasswordRules     = "Пароль має бути довше 8 символів та містити не лише числа"
	msgLoginInvalid      = "Недійсне ім'я або пароль"
	msgLoginLocked       = "Забагато невдалих спроб. Спробуйте через 15 хвилин"
	msgWrongPassword     = "Пароль неправильний"
	msgPasswordsMismatch = "Паролі не збігаються"
	msgUsernameTaken     = "Дане ім'я вже зайняте"
	msgRegistrationOff   = "Реєстрацію тимчасово вимкнено"
	msgPasswordChanged   = "Пароль змінено"
	msgPostDeleted       = "Питання видалено"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
	maxPasswordLen = 128
	maxPasswordRaw = 72 // bcrypt input limit in bytes
)

// PostForm is the add/edit post form
type PostForm struct {
	Title    string `form:"title" binding:"required,notblank,max=200"`
	Question string `form:"question" binding:"required,notblank,max=10000"`
}

// AnswerForm is the add/edit answer form
type AnswerForm struct {
	Text string `form:"text" binding:"required,notblank,max=10000"`
}

// RegisterForm is the sign up form
type RegisterForm struct {
	Username  string `form:"username" binding:"required,username"`
	Password1 string `form:"password1" binding:"required,password"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

// LoginForm is the sign in form
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Redirect string `form:"redirect"`
}

// ChangePasswordForm asks for the old password and the new one twice
type ChangePasswordForm struct {
	Password  string `form:"password" binding:"required"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

// EditUsernameForm carries the new username
type EditUsernameForm struct {
	Username string `form:"username"`
}

// DeleteUserForm confirms account deletion with the password
type DeleteUserForm struct {
	Password string `form:"password" binding:"required"`
}

var (
	registerValidatorsOnce sync.Once
	registerValidatorsErr  error
)

// registerFormValidators adds the custom tags to gin's validator engine
func registerFormValidators() error {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerValidatorsErr = errors.New("gin validator engine is not validator/v10")
			return
		}
		for tag, fn := range map[string]validator.Func{
			"notblank": func(fl validator.FieldLevel) bool { return strings.TrimSpace(fl.Field().String()) != "" },
			"username": func(fl validator.FieldLevel) bool { return ValidUsername(fl.Field().String()) },
			"password": func(fl validator.FieldLevel) bool { return ValidPassword(fl.Field().String()) },
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerValidatorsErr = err
				return
			}
		}
	})
	return registerValidatorsErr
}

// ValidUsername allows 3-50 letters, digits and _ . - @ +
func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return false
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.-@+", r) {
			continue
		}
		return false
	}
	return true
}

// ValidPassword requires 8-128 characters that fit into 72 bytes, not all digits
func ValidPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen || len(password) > maxPasswordRaw {
		return false
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
