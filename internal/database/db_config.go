package database

import (
	"errors"
	"strconv"
)

// Config table keys
const (
	ConfigRegistrationEnabled = "registration_enabled"
)

const query_GetConfigValue = `SELECT value FROM config WHERE key = ?`

// GetConfigValue retrieves a configuration value from the config table.
// Missing keys return an empty string.
func (db *Database) GetConfigValue(key string) (string, error) {
	var value string
	err := retryableQueryRowScan(db.mainDB, query_GetConfigValue, []interface{}{key}, &value)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

const query_SetConfigValue = `INSERT INTO config (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SetConfigValue sets or updates a configuration value in the config table
func (db *Database) SetConfigValue(key, value string) error {
	_, err := retryableExec(db.mainDB, query_SetConfigValue, key, value, now())
	return err
}

// GetConfigBool retrieves a boolean configuration value, def when unset or unparsable
func (db *Database) GetConfigBool(key string, def bool) (bool, error) {
	value, err := db.GetConfigValue(key)
	if err != nil {
		return def, err
	}
	if value == "" {
		return def, nil
	}
	b, perr := strconv.ParseBool(value)
	if perr != nil {
		return def, nil
	}
	return b, nil
}

// SetConfigBool sets a boolean configuration value
func (db *Database) SetConfigBool(key string, value bool) error {
	return db.SetConfigValue(key, strconv.FormatBool(value))
}

// IsRegistrationEnabled checks if user registration is enabled, default true
func (db *Database) IsRegistrationEnabled() (bool, error) {
	return db.GetConfigBool(ConfigRegistrationEnabled, true)
}

// SetRegistrationEnabled toggles user registration
func (db *Database) SetRegistrationEnabled(enabled bool) error {
	return db.SetConfigBool(ConfigRegistrationEnabled, enabled)
}
