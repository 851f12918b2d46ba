package dashboard

import (
	"errors"
	"fmt"
)

var (
	errMissingTableSource = errors.New("dashboard: table source not configured")
	errMissingTableID     = errors.New("dashboard: table id is required")

	// ErrSectionNotFound is returned when a section key is not in the manifest.
	ErrSectionNotFound = errors.New("dashboard: section not found")
)

// ConfigError reports a missing, unreadable, or malformed manifest.
type ConfigError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "dashboard: invalid manifest"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newConfigError(source, reason string, err error) *ConfigError {
	return &ConfigError{Source: source, Reason: reason, Err: err}
}

// DataNotFoundError signals that a table id has no validated dataset.
type DataNotFoundError struct {
	Table string
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("dashboard: no validated dataset for table %q", e.Table)
}

// IsDataNotFound reports whether err wraps a DataNotFoundError.
func IsDataNotFound(err error) bool {
	var target *DataNotFoundError
	return errors.As(err, &target)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsNotFound reports whether err means the requested table or section does not exist.
func IsNotFound(err error) bool {
	return IsDataNotFound(err) || errors.Is(err, ErrSectionNotFound)
}
