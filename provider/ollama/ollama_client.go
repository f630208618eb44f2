package ollama

import (
	"context"
	"fmt"
	"net/http"

	ollama "github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer"
	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/pconf"
	"github.com/lemon-mint/jsonformer/provider"
	"github.com/lemon-mint/jsonformer/tokenizer/tiktoken"
)

var _ provider.Client = (*OllamaClient)(nil)

type OllamaClient struct {
	client    *ollama.Client
	tokenizer lm.Tokenizer
	logger    *zap.Logger
}

func (g *OllamaClient) NewModel(model string) (lm.Model, error) {
	if model == "" {
		return nil, lm.ErrInvalidRequest
	}

	var _vm = &ollamaModel{
		client:    g.client,
		tokenizer: g.tokenizer,
		logger:    g.logger.With(zap.String("provider", ProviderName), zap.String("model", model)),
		model:     model,
	}

	return _vm, nil
}

func (g *OllamaClient) Tokenizer() lm.Tokenizer {
	return g.tokenizer
}

func (g *OllamaClient) Close() error {
	return nil
}

var _ provider.Provider = Provider

type OllamaProvider struct {
}

// NewClient connects to the server named by pconf.WithBaseURL, or by
// OLLAMA_HOST when no base URL is given, and checks that it answers.
func (OllamaProvider) NewClient(ctx context.Context, configs ...pconf.Config) (provider.Client, error) {
	client_config, err := pconf.Apply(configs...)
	if err != nil {
		return nil, err
	}

	host, err := getOllamaHost()
	if client_config.BaseURL != "" {
		host, err = parseHost(client_config.BaseURL)
	}
	if err != nil {
		return nil, err
	}

	httpClient := client_config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	tokenizer := client_config.Tokenizer
	if tokenizer == nil {
		tokenizer = tiktoken.New(client_config.Encoding)
	}

	c := &OllamaClient{
		client:    ollama.NewClient(host, httpClient),
		tokenizer: tokenizer,
		logger:    client_config.Logger,
	}
	if err := c.client.Heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("ollama: %s: %w", host, convertError(err))
	}

	return c, nil
}

const ProviderName = "ollama"

var Provider OllamaProvider

func init() {
	jsonformer.RegisterProvider(ProviderName, Provider)
}
