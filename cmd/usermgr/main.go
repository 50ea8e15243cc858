package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/database"
	"github.com/go-while/go-advice/internal/models"
	"github.com/go-while/go-advice/internal/web"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion
	log.Printf("go-advice User Manager (version: %s)", config.AppVersion)
	var (
		createUser   = flag.Bool("create", false, "Create a new user")
		listUsers    = flag.Bool("list", false, "List all users")
		deleteUser   = flag.Bool("delete", false, "Delete a user with all posts and answers")
		updateUser   = flag.Bool("update", false, "Update a user's password")
		username     = flag.String("username", "", "Username for user operations")
		registration = flag.String("registration", "", "enable or disable public registration")
		dataDir      = flag.String("data", config.DefaultDataDir, "Directory of the database")
	)
	flag.Parse()

	if !*createUser && !*listUsers && !*deleteUser && !*updateUser && *registration == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -create -username olena\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -update -username olena\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -delete -username olena\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -registration disable\n", os.Args[0])
		os.Exit(1)
	}

	dbConfig := database.DefaultDBConfig()
	dbConfig.DataDir = *dataDir
	db, err := database.OpenDatabase(dbConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Shutdown()

	switch {
	case *createUser:
		if *username == "" {
			log.Fatal("Username is required for user creation")
		}
		if err := createNewUser(db, *username); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}

	case *listUsers:
		if err := listAllUsers(db); err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}

	case *deleteUser:
		if *username == "" {
			log.Fatal("Username is required for user deletion")
		}
		if err := deleteExistingUser(db, *username); err != nil {
			log.Fatalf("Failed to delete user: %v", err)
		}

	case *updateUser:
		if *username == "" {
			log.Fatal("Username is required for user update")
		}
		if err := updateUserPassword(db, *username); err != nil {
			log.Fatalf("Failed to update user: %v", err)
		}

	case *registration != "":
		if err := setRegistration(db, *registration); err != nil {
			log.Fatalf("Failed to change registration: %v", err)
		}
	}
}

// readNewPassword prompts twice and applies the same rules as the web form
func readNewPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %v", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmPassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password confirmation: %v", err)
	}
	fmt.Println()

	if string(password) != string(confirmPassword) {
		return nil, fmt.Errorf("passwords do not match")
	}
	if !web.ValidPassword(string(password)) {
		return nil, fmt.Errorf("password must be 8-128 characters, at most 72 bytes, and not only digits")
	}
	return password, nil
}

func createNewUser(db *database.Database, username string) error {
	if !web.ValidUsername(username) {
		return fmt.Errorf("invalid username '%s': use 3-50 letters, digits or _ . - @ +", username)
	}
	exists, err := db.UsernameExists(username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("user '%s' already exists", username)
	}

	password, err := readNewPassword("Enter password: ")
	if err != nil {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hashedPassword)}
	if err := db.InsertUser(user); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return fmt.Errorf("user '%s' already exists", username)
		}
		return fmt.Errorf("failed to insert user: %v", err)
	}
	fmt.Printf("✅ User '%s' created successfully (ID: %d)\n", username, user.ID)
	return nil
}

func listAllUsers(db *database.Database) error {
	users, err := db.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to get users: %v", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	fmt.Printf("Found %d users:\n\n", len(users))
	fmt.Printf("%-6s %-20s %-7s %-6s %-7s %s\n", "ID", "Username", "Rating", "Posts", "Answers", "Created")
	fmt.Printf("%-6s %-20s %-7s %-6s %-7s %s\n", "------", "--------", "------", "-----", "-------", "-------")

	for _, user := range users {
		posts, err := db.CountPostsByAuthor(user.ID)
		if err != nil {
			return err
		}
		answers, err := db.CountAnswersByAuthor(user.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-6d %-20s %-7d %-6d %-7d %s\n",
			user.ID,
			truncate(user.Username, 20),
			user.Rating,
			posts,
			answers,
			user.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func deleteExistingUser(db *database.Database, username string) error {
	user, err := db.GetUserByUsername(username)
	if err != nil {
		return fmt.Errorf("user '%s' not found", username)
	}

	fmt.Printf("Delete user '%s' (ID: %d) with all posts and answers? [y/N]: ", username, user.ID)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response != "y" && response != "yes" {
		fmt.Println("User deletion cancelled")
		return nil
	}

	if err := db.DeleteUser(user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	fmt.Printf("✅ User '%s' (ID: %d) deleted\n", user.Username, user.ID)
	return nil
}

func updateUserPassword(db *database.Database, username string) error {
	user, err := db.GetUserByUsername(username)
	if err != nil {
		return fmt.Errorf("user '%s' not found", username)
	}

	password, err := readNewPassword(fmt.Sprintf("Enter new password for '%s': ", username))
	if err != nil {
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	if err := db.UpdateUserPassword(user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	// force a fresh login everywhere
	if err := db.InvalidateUserSession(user.ID); err != nil {
		return fmt.Errorf("password updated but session not cleared: %v", err)
	}

	fmt.Printf("✅ Password updated successfully for user '%s'\n", username)
	return nil
}

func setRegistration(db *database.Database, value string) error {
	var enabled bool
	switch strings.ToLower(value) {
	case "enable", "on", "true":
		enabled = true
	case "disable", "off", "false":
	default:
		return fmt.Errorf("-registration wants enable or disable, got %q", value)
	}
	if err := db.SetRegistrationEnabled(enabled); err != nil {
		return err
	}
	fmt.Printf("✅ Registration enabled: %t\n", enabled)
	return nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
