package former

import (
	"errors"
	"fmt"

	"github.com/lemon-mint/jsonformer/schema"
	"github.com/lemon-mint/jsonformer/value"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = schema.ErrConfiguration

	ErrNumber = errors.New("failed to generate a valid number")
)

type ConfigurationError = schema.ConfigurationError

func configErr(path value.Path, format string, a ...any) error {
	return &ConfigurationError{Path: path.String(), Reason: fmt.Sprintf(format, a...)}
}

// GenerationFailure is returned when the model kept producing text that
// could not be parsed as the requested type.
type GenerationFailure struct {
	Path     value.Path
	Attempts int
	Last     string
	Err      error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("former: %s: %v after %d attempts (last output %q)", e.Path, e.Err, e.Attempts, e.Last)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}
