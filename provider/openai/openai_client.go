package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer"
	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/pconf"
	"github.com/lemon-mint/jsonformer/provider"
	"github.com/lemon-mint/jsonformer/tokenizer/tiktoken"
)

// DefaultTopLogprobs is the number of alternatives a forward pass requests.
// The legacy completions endpoint accepts at most 5; self-hosted servers
// often allow more (see pconf.WithTopLogprobs).
const DefaultTopLogprobs = 5

type openAIClient struct {
	client      *openai.Client
	tokenizer   lm.Tokenizer
	topLogprobs int
	logger      *zap.Logger
}

func (c *openAIClient) Tokenizer() lm.Tokenizer {
	return c.tokenizer
}

func (*openAIClient) Close() error {
	return nil
}

var (
	ErrAPIKeyRequired error = errors.New("api key is required")
)

type openaiConfig func(*openAIClient) error

func (openaiConfig) Apply(*pconf.GeneralConfig) error {
	return nil
}

func WithAzureConfig(apiKey, baseURL string) pconf.Config {
	return WithOpenAIConfig(openai.DefaultAzureConfig(apiKey, baseURL))
}

func WithOpenAIConfig(config openai.ClientConfig) pconf.Config {
	return WithOpenAIClient(openai.NewClientWithConfig(config))
}

func WithOpenAIClient(client *openai.Client) pconf.Config {
	return openaiConfig(func(c *openAIClient) error {
		c.client = client
		return nil
	})
}

func newClient(configs ...pconf.Config) (*openAIClient, error) {
	var openai_client openAIClient
	var general []pconf.Config
	for i := range configs {
		switch v := configs[i].(type) {
		case openaiConfig:
			if err := v(&openai_client); err != nil {
				return nil, err
			}
		default:
			general = append(general, configs[i])
		}
	}

	client_config, err := pconf.Apply(general...)
	if err != nil {
		return nil, err
	}

	openai_client.logger = client_config.Logger
	openai_client.topLogprobs = client_config.TopLogprobs
	if openai_client.topLogprobs == 0 {
		openai_client.topLogprobs = DefaultTopLogprobs
	}
	openai_client.tokenizer = client_config.Tokenizer
	if openai_client.tokenizer == nil {
		openai_client.tokenizer = tiktoken.New(client_config.Encoding)
	}

	if openai_client.client != nil {
		return &openai_client, nil
	}

	if client_config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	openai_config := openai.DefaultConfig(client_config.APIKey)
	if client_config.BaseURL != "" {
		openai_config.BaseURL = client_config.BaseURL
	}
	if client_config.HTTPClient != nil {
		openai_config.HTTPClient = client_config.HTTPClient
	}

	openai_client.client = openai.NewClientWithConfig(openai_config)
	return &openai_client, nil
}

var _ provider.Client = (*openAIClient)(nil)

func (c *openAIClient) NewModel(model string) (lm.Model, error) {
	if model == "" {
		return nil, lm.ErrInvalidRequest
	}

	return &openAIModel{
		client:      c.client,
		tokenizer:   c.tokenizer,
		topLogprobs: c.topLogprobs,
		logger:      c.logger.With(zap.String("provider", ProviderName), zap.String("model", model)),
		model:       model,
	}, nil
}

var _ provider.Provider = Provider

type OpenAIProvider struct {
}

func (OpenAIProvider) NewClient(ctx context.Context, configs ...pconf.Config) (provider.Client, error) {
	return newClient(configs...)
}

const ProviderName = "openai"

var Provider OpenAIProvider

func init() {
	jsonformer.RegisterProvider(ProviderName, Provider)
}
