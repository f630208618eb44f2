package schema

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks schemas outside the supported subset.
var ErrConfiguration = errors.New("invalid schema configuration")

// ConfigurationError reports where in a schema document a problem was found.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErr(path, format string, a ...any) error {
	return &ConfigurationError{Path: path, Reason: fmt.Sprintf(format, a...)}
}
