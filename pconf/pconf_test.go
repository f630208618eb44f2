package pconf_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/internal/lmtest"
	"github.com/lemon-mint/jsonformer/pconf"
)

func TestApply(t *testing.T) {
	tok := lmtest.NewTokenizer()
	g, err := pconf.Apply(
		pconf.WithAPIKey("sk-secret"),
		pconf.WithBaseURL("http://localhost:8000/v1"),
		pconf.WithHTTPClient(http.DefaultClient),
		pconf.WithTokenizer(tok),
		pconf.WithEncoding("r50k_base"),
		pconf.WithTopLogprobs(20),
	)
	require.NoError(t, err)

	assert.Equal(t, "sk-secret", g.APIKey)
	assert.Equal(t, "http://localhost:8000/v1", g.BaseURL)
	assert.Same(t, http.DefaultClient, g.HTTPClient)
	assert.Equal(t, tok, g.Tokenizer)
	assert.Equal(t, "r50k_base", g.Encoding)
	assert.Equal(t, 20, g.TopLogprobs)
	assert.NotNil(t, g.Logger)
}

func TestWithLogger(t *testing.T) {
	l := zap.NewExample()
	g, err := pconf.Apply(pconf.WithLogger(l))
	require.NoError(t, err)
	assert.Same(t, l, g.Logger)
}

func TestApplyError(t *testing.T) {
	_, err := pconf.Apply(pconf.WithTopLogprobs(-1))
	assert.ErrorIs(t, err, pconf.ErrInvalidConfig)
}

func TestStringRedacts(t *testing.T) {
	g := pconf.GeneralConfig{APIKey: "sk-secret"}
	assert.NotContains(t, fmt.Sprint(g), "sk-secret")
	assert.NotContains(t, fmt.Sprintf("%v", &g), "sk-secret")
}
