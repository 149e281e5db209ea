package settings

import "errors"

var (
	// ErrSettingNotFound is returned when a setting key does not resolve.
	ErrSettingNotFound = errors.New("settings: setting not found")
	// ErrEmptyKey is returned when a setting key is blank.
	ErrEmptyKey = errors.New("settings: setting key cannot be empty")
)
