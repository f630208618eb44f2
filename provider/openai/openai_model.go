package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/internal/randpool"
	"github.com/lemon-mint/jsonformer/lm"
)

var _ lm.Model = (*openAIModel)(nil)

// openAIModel drives the legacy completions endpoint, which takes raw text
// and can report the most likely alternatives for each produced token.
type openAIModel struct {
	client      *openai.Client
	tokenizer   lm.Tokenizer
	topLogprobs int
	logger      *zap.Logger
	model       string
}

func (o *openAIModel) Generate(ctx context.Context, tokens []int, config *lm.GenerateConfig) ([]int, error) {
	prompt, err := o.tokenizer.Decode(tokens, false)
	if err != nil {
		return nil, err
	}

	req := openai.CompletionRequest{
		Model:  o.model,
		Prompt: prompt,
		N:      1,
	}
	if config != nil {
		if config.MaxNewTokens != nil {
			req.MaxTokens = *config.MaxNewTokens
		}
		if config.Temperature != nil {
			req.Temperature = *config.Temperature
		}
		req.Seed = config.Seed
		req.Stop = config.Stop
	}
	if req.Seed == nil {
		req.Seed = ptrify(randpool.Seed())
		o.logger.Debug("drew sampling seed", zap.Int("seed", *req.Seed))
	}

	resp, err := o.client.CreateCompletion(ctx, req)
	if err != nil {
		return nil, convertError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, lm.ErrNoResponse
	}

	cont, err := o.tokenizer.Encode(resp.Choices[0].Text)
	if err != nil {
		return nil, err
	}

	out := make([]int, 0, len(tokens)+len(cont))
	out = append(out, tokens...)
	return append(out, cont...), nil
}

// Forward asks for a single token and returns the alternatives the server
// reports for it. Alternatives that do not map to exactly one token of the
// local tokenizer are dropped.
func (o *openAIModel) Forward(ctx context.Context, tokens []int) (*lm.Output, error) {
	prompt, err := o.tokenizer.Decode(tokens, false)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     o.model,
		Prompt:    prompt,
		MaxTokens: 1,
		N:         1,
		LogProbs:  o.topLogprobs,
	})
	if err != nil {
		return nil, convertError(err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].LogProbs.TopLogprobs) == 0 {
		return nil, fmt.Errorf("%w: no top logprobs in completion", lm.ErrInvalidResponse)
	}

	top := resp.Choices[0].LogProbs.TopLogprobs[0]
	logits := make(lm.Sparse, len(top))
	for text, logprob := range top {
		id, err := o.tokenizer.TokenID(text)
		if err != nil {
			o.logger.Debug("dropped alternative", zap.String("token", text), zap.Error(err))
			continue
		}
		if prev, ok := logits[id]; !ok || logprob > prev {
			logits[id] = logprob
		}
	}

	return &lm.Output{Logits: logits}, nil
}

func (o *openAIModel) Name() string {
	return o.model
}

func (o *openAIModel) Close() error {
	return nil
}

func convertError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", lm.ErrorByStatus(apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %w", lm.ErrorByStatus(reqErr.HTTPStatusCode), err)
	}
	return err
}

func ptrify[T any](v T) *T {
	return &v
}
