package jsonformer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lemon-mint/jsonformer"
	"github.com/lemon-mint/jsonformer/internal/lmtest"
	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/pconf"
	"github.com/lemon-mint/jsonformer/provider"
)

type stubClient struct {
	tok *lmtest.Tokenizer
}

func (c stubClient) NewModel(string) (lm.Model, error) { return lmtest.NewModel(c.tok), nil }
func (c stubClient) Tokenizer() lm.Tokenizer           { return c.tok }
func (c stubClient) Close() error                      { return nil }

type stubProvider struct{}

func (stubProvider) NewClient(_ context.Context, configs ...pconf.Config) (provider.Client, error) {
	if _, err := pconf.Apply(configs...); err != nil {
		return nil, err
	}
	return stubClient{tok: lmtest.NewTokenizer()}, nil
}

func TestRegistry(t *testing.T) {
	jsonformer.RegisterProvider("stub-b", stubProvider{})
	jsonformer.RegisterProvider("stub-a", stubProvider{})

	names := jsonformer.Providers()
	assert.Subset(t, names, []string{"stub-a", "stub-b"})
	assert.IsNonDecreasing(t, names)

	client, err := jsonformer.NewClient(context.Background(), "stub-a")
	require.NoError(t, err)
	defer client.Close()

	model, err := client.NewModel("any")
	require.NoError(t, err)
	assert.Equal(t, "lmtest", model.Name())
}

func TestNewClientUnknown(t *testing.T) {
	_, err := jsonformer.NewClient(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, jsonformer.ErrUnknownProvider)
}

func TestNewClientConfigError(t *testing.T) {
	jsonformer.RegisterProvider("stub-c", stubProvider{})
	_, err := jsonformer.NewClient(context.Background(), "stub-c", pconf.WithTopLogprobs(-1))
	assert.ErrorIs(t, err, pconf.ErrInvalidConfig)
}
