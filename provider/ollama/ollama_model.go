package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ollama "github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/internal/randpool"
	"github.com/lemon-mint/jsonformer/lm"
)

var _ lm.Model = (*ollamaModel)(nil)

// ollamaModel sends prompts in raw mode so the server applies no chat
// template and continues the text as given.
type ollamaModel struct {
	client    *ollama.Client
	tokenizer lm.Tokenizer
	logger    *zap.Logger
	model     string
}

func (g *ollamaModel) generate(ctx context.Context, prompt string, options map[string]interface{}) (string, error) {
	model_request := &ollama.GenerateRequest{
		Model:   g.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  ptrify(false),
		Options: options,
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, model_request, func(gr ollama.GenerateResponse) error {
		sb.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", convertError(err)
	}
	return sb.String(), nil
}

func (g *ollamaModel) Generate(ctx context.Context, tokens []int, config *lm.GenerateConfig) ([]int, error) {
	prompt, err := g.tokenizer.Decode(tokens, false)
	if err != nil {
		return nil, err
	}

	options := map[string]interface{}{}
	if config != nil {
		if config.MaxNewTokens != nil {
			options["num_predict"] = *config.MaxNewTokens
		}
		if config.Temperature != nil {
			options["temperature"] = *config.Temperature
		}
		if config.Seed != nil {
			options["seed"] = *config.Seed
		}
		if len(config.Stop) > 0 {
			options["stop"] = config.Stop
		}
	}
	if _, ok := options["seed"]; !ok {
		seed := randpool.Seed()
		options["seed"] = seed
		g.logger.Debug("drew sampling seed", zap.Int("seed", seed))
	}

	text, err := g.generate(ctx, prompt, options)
	if err != nil {
		return nil, err
	}

	cont, err := g.tokenizer.Encode(text)
	if err != nil {
		return nil, err
	}

	out := make([]int, 0, len(tokens)+len(cont))
	out = append(out, tokens...)
	return append(out, cont...), nil
}

// Forward cannot read logits from the server. It samples one token greedily
// and reports it as the only candidate: the token (and its trimmed form, if
// that is a single token) scores 0 and everything else -Inf. An empty
// response gives empty logits.
func (g *ollamaModel) Forward(ctx context.Context, tokens []int) (*lm.Output, error) {
	prompt, err := g.tokenizer.Decode(tokens, false)
	if err != nil {
		return nil, err
	}

	text, err := g.generate(ctx, prompt, map[string]interface{}{
		"num_predict": 1,
		"temperature": 0,
	})
	if err != nil {
		return nil, err
	}

	logits := lm.Sparse{}
	ids, err := g.tokenizer.Encode(text)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		logits[ids[0]] = 0
	}
	if id, err := g.tokenizer.TokenID(strings.TrimSpace(text)); err == nil {
		logits[id] = 0
	}

	g.logger.Debug("greedy probe", zap.String("token", text))
	return &lm.Output{Logits: logits}, nil
}

func (g *ollamaModel) Name() string {
	return g.model
}

func (g *ollamaModel) Close() error {
	return nil
}

func convertError(err error) error {
	var statusErr ollama.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w", lm.ErrorByStatus(statusErr.StatusCode), err)
	}
	return err
}

func ptrify[T any](v T) *T {
	return &v
}
