package lm

import "fmt"

func Ptrify[T any](v T) *T {
	return &v
}

// Continuation decodes the tokens that out holds past the first promptLen
// entries.
func Continuation(tok Tokenizer, out []int, promptLen int) (string, error) {
	if len(out) < promptLen {
		return "", fmt.Errorf("%w: model returned %d tokens for a %d token prompt", ErrInvalidResponse, len(out), promptLen)
	}
	return tok.Decode(out[promptLen:], true)
}
