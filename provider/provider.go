package provider

import (
	"context"

	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/pconf"
)

type Client interface {
	NewModel(model string) (lm.Model, error)

	// Tokenizer returns the tokenizer matching the models this client
	// serves.
	Tokenizer() lm.Tokenizer
	Close() error
}

type Provider interface {
	NewClient(ctx context.Context, configs ...pconf.Config) (Client, error)
}
