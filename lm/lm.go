// Package lm defines the language model and tokenizer collaborators the
// generation engine drives. Backends in provider/ implement these interfaces.
package lm

import (
	"context"
	"sync"
)

// Tokenizer converts between text and the token ids a Model consumes.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(tokens []int, skipSpecial bool) (string, error)

	// TokenID returns the id of a text that encodes to exactly one token.
	TokenID(token string) (int, error)
	EOSTokenID() int
}

// GenerateConfig bounds a single Generate call. Nil fields fall back to the
// backend's defaults.
type GenerateConfig struct {
	MaxNewTokens       *int     `json:"max_new_tokens,omitempty"`
	Temperature        *float32 `json:"temperature,omitempty"`
	PadTokenID         *int     `json:"pad_token_id,omitempty"`
	NumReturnSequences *int     `json:"num_return_sequences,omitempty"`
	Seed               *int     `json:"seed,omitempty"`

	// Stop is a hint. Backends that cannot stop early ignore it.
	Stop []string `json:"stop,omitempty"`
}

// Output is the result of a forward pass.
type Output struct {
	// Logits scores the token following the last input position.
	Logits Logits
}

type Model interface {
	// Generate returns the input tokens followed by the generated continuation.
	Generate(ctx context.Context, tokens []int, config *GenerateConfig) ([]int, error)
	Forward(ctx context.Context, tokens []int) (*Output, error)
	Name() string
	Close() error
}

// Serialize wraps m so that at most one call runs at a time.
func Serialize(m Model) Model {
	if s, ok := m.(*serialModel); ok {
		return s
	}
	return &serialModel{m: m}
}

var _ Model = (*serialModel)(nil)

type serialModel struct {
	mu sync.Mutex
	m  Model
}

func (s *serialModel) Generate(ctx context.Context, tokens []int, config *GenerateConfig) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Generate(ctx, tokens, config)
}

func (s *serialModel) Forward(ctx context.Context, tokens []int) (*Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Forward(ctx, tokens)
}

func (s *serialModel) Name() string {
	return s.m.Name()
}

func (s *serialModel) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Close()
}
