package former

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Config holds the generation settings. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Debug                bool    `yaml:"debug" json:"debug"`
	MaxArrayLength       int     `yaml:"max_array_length" json:"max_array_length"`
	MaxNumberTokens      int     `yaml:"max_number_tokens" json:"max_number_tokens"`
	Temperature          float32 `yaml:"temperature" json:"temperature"`
	MaxStringTokenLength int     `yaml:"max_string_token_length" json:"max_string_token_length"`

	// NumberRetries is how many times a number is regenerated after an
	// unparsable continuation. Each retry multiplies the temperature by
	// RetryTemperatureFactor.
	NumberRetries          int     `yaml:"number_retries" json:"number_retries"`
	RetryTemperatureFactor float32 `yaml:"retry_temperature_factor" json:"retry_temperature_factor"`

	// ContinuationTopK is how many of the most likely next tokens the array
	// continuation check looks at.
	ContinuationTopK int `yaml:"continuation_top_k" json:"continuation_top_k"`

	Template string `yaml:"template,omitempty" json:"template,omitempty"`
	Seed     *int   `yaml:"seed,omitempty" json:"seed,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		MaxArrayLength:         10,
		MaxNumberTokens:        6,
		Temperature:            1.0,
		MaxStringTokenLength:   10,
		NumberRetries:          3,
		RetryTemperatureFactor: 1.3,
		ContinuationTopK:       30,
	}
}

var (
	ErrInvalidOption = errors.New("invalid option")
)

func (c *Config) validate() error {
	switch {
	case c.MaxArrayLength < 0:
		return fmt.Errorf("%w: max array length %d", ErrInvalidOption, c.MaxArrayLength)
	case c.MaxNumberTokens <= 0:
		return fmt.Errorf("%w: max number tokens %d", ErrInvalidOption, c.MaxNumberTokens)
	case c.MaxStringTokenLength <= 0:
		return fmt.Errorf("%w: max string token length %d", ErrInvalidOption, c.MaxStringTokenLength)
	case c.Temperature < 0:
		return fmt.Errorf("%w: temperature %v", ErrInvalidOption, c.Temperature)
	case c.NumberRetries < 0:
		return fmt.Errorf("%w: number retries %d", ErrInvalidOption, c.NumberRetries)
	case c.RetryTemperatureFactor <= 0:
		return fmt.Errorf("%w: retry temperature factor %v", ErrInvalidOption, c.RetryTemperatureFactor)
	case c.ContinuationTopK <= 0:
		return fmt.Errorf("%w: continuation top k %d", ErrInvalidOption, c.ContinuationTopK)
	}
	return nil
}

type options struct {
	config      Config
	logger      *zap.Logger
	debugWriter io.Writer
}

type Option interface {
	apply(o *options) error
}

var _ Option = (fnOption)(nil)

type fnOption func(o *options) error

func (f fnOption) apply(o *options) error {
	return f(o)
}

// WithConfig replaces every setting at once.
func WithConfig(c Config) Option {
	return fnOption(func(o *options) error {
		o.config = c
		return nil
	})
}

func WithDebug(debug bool) Option {
	return fnOption(func(o *options) error {
		o.config.Debug = debug
		return nil
	})
}

func WithMaxArrayLength(n int) Option {
	return fnOption(func(o *options) error {
		o.config.MaxArrayLength = n
		return nil
	})
}

func WithMaxNumberTokens(n int) Option {
	return fnOption(func(o *options) error {
		o.config.MaxNumberTokens = n
		return nil
	})
}

func WithTemperature(t float32) Option {
	return fnOption(func(o *options) error {
		o.config.Temperature = t
		return nil
	})
}

func WithMaxStringTokenLength(n int) Option {
	return fnOption(func(o *options) error {
		o.config.MaxStringTokenLength = n
		return nil
	})
}

func WithNumberRetries(n int) Option {
	return fnOption(func(o *options) error {
		o.config.NumberRetries = n
		return nil
	})
}

// WithTemplate overrides the prompt template. See prompt.DefaultTemplate.
func WithTemplate(t string) Option {
	return fnOption(func(o *options) error {
		o.config.Template = t
		return nil
	})
}

func WithSeed(seed int) Option {
	return fnOption(func(o *options) error {
		o.config.Seed = &seed
		return nil
	})
}

func WithLogger(l *zap.Logger) Option {
	return fnOption(func(o *options) error {
		if l == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		o.logger = l
		return nil
	})
}

// WithDebugWriter sets where debug traces go when debugging is on. Defaults
// to os.Stderr.
func WithDebugWriter(w io.Writer) Option {
	return fnOption(func(o *options) error {
		if w == nil {
			return fmt.Errorf("%w: nil debug writer", ErrInvalidOption)
		}
		o.debugWriter = w
		return nil
	})
}

func defaultOptions() options {
	return options{
		config:      DefaultConfig(),
		logger:      zap.NewNop(),
		debugWriter: os.Stderr,
	}
}
