package pconf

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/lm"
)

// GeneralConfig collects the settings shared by every backend. Backends
// ignore fields that do not apply to them.
type GeneralConfig struct {
	APIKey  string
	BaseURL string

	HTTPClient *http.Client

	// Tokenizer overrides the backend's default tokenizer. Encoding selects
	// a tiktoken encoding when Tokenizer is nil.
	Tokenizer lm.Tokenizer
	Encoding  string

	// TopLogprobs is how many alternatives a forward pass asks the server
	// for. Zero selects the backend default.
	TopLogprobs int

	Logger *zap.Logger
}

func (GeneralConfig) String() string {
	return "<GeneralConfig [REDACTED]>"
}

type Config interface {
	Apply(g *GeneralConfig) error
}

// Apply runs configs against a fresh GeneralConfig and stops at the first
// error. A nil Logger is replaced by a no-op logger.
func Apply(configs ...Config) (GeneralConfig, error) {
	var g GeneralConfig
	for i := range configs {
		if err := configs[i].Apply(&g); err != nil {
			return GeneralConfig{}, err
		}
	}
	if g.Logger == nil {
		g.Logger = zap.NewNop()
	}
	return g, nil
}
