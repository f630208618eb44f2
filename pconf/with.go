package pconf

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/lm"
)

var ErrInvalidConfig = errors.New("invalid provider config")

var _ Config = (*fnConf)(nil)

type fnConf struct {
	Fn func(g *GeneralConfig) error
}

func (a *fnConf) Apply(g *GeneralConfig) error {
	return a.Fn(g)
}

func WithAPIKey(key string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.APIKey = key
			return nil
		},
	}
}

func WithBaseURL(url string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.BaseURL = url
			return nil
		},
	}
}

func WithHTTPClient(client *http.Client) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.HTTPClient = client
			return nil
		},
	}
}

func WithTokenizer(tok lm.Tokenizer) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.Tokenizer = tok
			return nil
		},
	}
}

// WithEncoding selects a tiktoken encoding such as "cl100k_base".
func WithEncoding(name string) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.Encoding = name
			return nil
		},
	}
}

func WithTopLogprobs(n int) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			if n < 0 {
				return ErrInvalidConfig
			}
			g.TopLogprobs = n
			return nil
		},
	}
}

func WithLogger(l *zap.Logger) Config {
	return &fnConf{
		func(g *GeneralConfig) error {
			g.Logger = l
			return nil
		},
	}
}
