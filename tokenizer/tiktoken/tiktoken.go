// Package tiktoken adapts github.com/pkoukk/tiktoken-go to lm.Tokenizer.
package tiktoken

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lemon-mint/jsonformer/lm"
)

const DefaultEncoding = tiktoken.MODEL_CL100K_BASE

var specialTokens = []string{
	tiktoken.ENDOFTEXT,
	tiktoken.FIM_PREFIX,
	tiktoken.FIM_MIDDLE,
	tiktoken.FIM_SUFFIX,
	tiktoken.ENDOFPROMPT,
}

// Tokenizer loads its encoding on first use. Loading may download the BPE
// ranks unless TIKTOKEN_CACHE_DIR holds them.
type Tokenizer struct {
	encoding string

	once    sync.Once
	initErr error
	enc     *tiktoken.Tiktoken
	special map[int]struct{}
	eos     int
}

var _ lm.Tokenizer = (*Tokenizer)(nil)

// New returns a tokenizer for the named encoding. An empty name selects
// DefaultEncoding.
func New(encoding string) *Tokenizer {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Tokenizer{encoding: encoding, eos: -1}
}

// ForModel picks the encoding OpenAI uses for model, falling back to
// DefaultEncoding for unknown names.
func ForModel(model string) *Tokenizer {
	if enc, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return New(enc)
	}
	for prefix, enc := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) {
			return New(enc)
		}
	}
	return New(DefaultEncoding)
}

func (t *Tokenizer) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("tiktoken: load encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc

		t.special = make(map[int]struct{}, len(specialTokens))
		for _, s := range specialTokens {
			ids := enc.Encode(s, []string{s}, nil)
			if len(ids) != 1 || enc.Decode(ids) != s {
				continue
			}
			t.special[ids[0]] = struct{}{}
			if s == tiktoken.ENDOFTEXT {
				t.eos = ids[0]
			}
		}
	})
	return t.initErr
}

// Encode treats special token text as ordinary text.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	if err := t.init(); err != nil {
		return nil, err
	}
	return t.enc.Encode(text, nil, nil), nil
}

func (t *Tokenizer) Decode(tokens []int, skipSpecial bool) (string, error) {
	if err := t.init(); err != nil {
		return "", err
	}
	if skipSpecial {
		kept := make([]int, 0, len(tokens))
		for _, id := range tokens {
			if _, ok := t.special[id]; !ok {
				kept = append(kept, id)
			}
		}
		tokens = kept
	}
	return t.enc.Decode(tokens), nil
}

func (t *Tokenizer) TokenID(token string) (int, error) {
	ids, err := t.Encode(token)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("%w: %q encodes to %d tokens", lm.ErrNotSingleToken, token, len(ids))
	}
	return ids[0], nil
}

// EOSTokenID returns the id of <|endoftext|>, or -1 if the encoding could not
// be loaded or has no such token.
func (t *Tokenizer) EOSTokenID() int {
	if err := t.init(); err != nil {
		return -1
	}
	return t.eos
}

func (t *Tokenizer) Encoding() string {
	return t.encoding
}
