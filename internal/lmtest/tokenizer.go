// Package lmtest provides an in-memory tokenizer and a scripted model for
// tests that drive the generation engine without a model server.
package lmtest

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lemon-mint/jsonformer/lm"
)

const EOS = "<|endoftext|>"

// runeBase is the id of the first single rune token. Vocabulary words get ids
// below it.
const runeBase = 1000

// DefaultVocabulary holds the words the engine looks up as single tokens.
var DefaultVocabulary = []string{EOS, "true", "false", ",", "]", " ]", ",\n", "\n"}

// Tokenizer encodes vocabulary words as one token each and every other rune
// as its own token.
type Tokenizer struct {
	words []string
	ids   map[string]int

	// byLen lists words longest first for greedy matching.
	byLen []string
}

var _ lm.Tokenizer = (*Tokenizer)(nil)

func NewTokenizer(vocabulary ...string) *Tokenizer {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	t := &Tokenizer{ids: make(map[string]int, len(vocabulary))}
	for _, w := range vocabulary {
		if _, ok := t.ids[w]; ok || w == "" {
			continue
		}
		t.ids[w] = len(t.words)
		t.words = append(t.words, w)
	}
	t.byLen = append([]string(nil), t.words...)
	sort.SliceStable(t.byLen, func(i, j int) bool {
		return len(t.byLen[i]) > len(t.byLen[j])
	})
	return t
}

func (t *Tokenizer) Encode(text string) ([]int, error) {
	var out []int
	for len(text) > 0 {
		matched := false
		for _, w := range t.byLen {
			if strings.HasPrefix(text, w) {
				out = append(out, t.ids[w])
				text = text[len(w):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		r, size := utf8.DecodeRuneInString(text)
		out = append(out, runeBase+int(r))
		text = text[size:]
	}
	return out, nil
}

func (t *Tokenizer) Decode(tokens []int, skipSpecial bool) (string, error) {
	var sb strings.Builder
	for _, id := range tokens {
		switch {
		case id >= runeBase:
			sb.WriteRune(rune(id - runeBase))
		case id >= 0 && id < len(t.words):
			if skipSpecial && t.words[id] == EOS {
				continue
			}
			sb.WriteString(t.words[id])
		default:
			return "", fmt.Errorf("lmtest: unknown token %d", id)
		}
	}
	return sb.String(), nil
}

func (t *Tokenizer) TokenID(token string) (int, error) {
	ids, _ := t.Encode(token)
	if len(ids) != 1 {
		return 0, fmt.Errorf("%w: %q encodes to %d tokens", lm.ErrNotSingleToken, token, len(ids))
	}
	return ids[0], nil
}

func (t *Tokenizer) EOSTokenID() int {
	if id, ok := t.ids[EOS]; ok {
		return id
	}
	return -1
}

// MustID is TokenID for tests. It panics if token is not a single token.
func (t *Tokenizer) MustID(token string) int {
	id, err := t.TokenID(token)
	if err != nil {
		panic(err)
	}
	return id
}
