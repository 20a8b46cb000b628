package core

import (
	"errors"
	"fmt"
)

// A ConfigError is raised during analysis when a node's configuration cannot
// produce a valid action (no matching toolchain, bad lint config filename,
// conflicting aliases, etc). It aborts construction of that node's action
// entirely and is never retried.
type ConfigError struct {
	msg string
}

func (err *ConfigError) Error() string {
	return err.msg
}

// ConfigErrorf creates a new ConfigError with a formatted message.
func ConfigErrorf(format string, args ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError returns true if the given error is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
