package lmtest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/lemon-mint/jsonformer/lm"
)

// Reply is the scripted answer to one model call. Exactly one of Text,
// Logits or Err is used: Text answers Generate, Logits answers Forward.
type Reply struct {
	Text   string
	Logits lm.Logits
	Err    error
}

func Text(s string) Reply      { return Reply{Text: s} }
func Scores(l lm.Logits) Reply { return Reply{Logits: l} }
func Fail(err error) Reply     { return Reply{Err: err} }

// Call records one request made to a Model.
type Call struct {
	Forward bool
	Prompt  string
	Config  *lm.GenerateConfig
}

// Model answers calls from a script in order. A call that does not match the
// next reply, or arrives after the script ran out, fails.
type Model struct {
	tok *Tokenizer

	mu      sync.Mutex
	replies []Reply
	calls   []Call
	closed  bool
}

var _ lm.Model = (*Model)(nil)

func NewModel(tok *Tokenizer, replies ...Reply) *Model {
	return &Model{tok: tok, replies: replies}
}

func (m *Model) next(forward bool, tokens []int, config *lm.GenerateConfig) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Reply{}, fmt.Errorf("lmtest: model closed")
	}

	prompt, err := m.tok.Decode(tokens, false)
	if err != nil {
		return Reply{}, err
	}
	m.calls = append(m.calls, Call{Forward: forward, Prompt: prompt, Config: config})

	if len(m.replies) == 0 {
		return Reply{}, fmt.Errorf("lmtest: script exhausted at call %d", len(m.calls))
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.Err != nil {
		return Reply{}, r.Err
	}
	if forward != (r.Logits != nil) {
		return Reply{}, fmt.Errorf("lmtest: call %d: forward=%v does not match the script", len(m.calls), forward)
	}
	return r, nil
}

func (m *Model) Generate(ctx context.Context, tokens []int, config *lm.GenerateConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := m.next(false, tokens, config)
	if err != nil {
		return nil, err
	}
	cont, err := m.tok.Encode(r.Text)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(tokens)+len(cont))
	out = append(out, tokens...)
	return append(out, cont...), nil
}

func (m *Model) Forward(ctx context.Context, tokens []int) (*lm.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := m.next(true, tokens, nil)
	if err != nil {
		return nil, err
	}
	return &lm.Output{Logits: r.Logits}, nil
}

func (m *Model) Name() string {
	return "lmtest"
}

func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls returns the calls made so far.
func (m *Model) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Remaining returns how many scripted replies were not consumed.
func (m *Model) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}

// Ranked returns logits where the given tokens are the most likely, in
// order. Every other token scores -Inf.
func (t *Tokenizer) Ranked(tokens ...string) lm.Sparse {
	s := make(lm.Sparse, len(tokens))
	for i, tok := range tokens {
		s[t.MustID(tok)] = float32(len(tokens) - i)
	}
	return s
}

// Continue returns logits whose best token is a comma.
func (t *Tokenizer) Continue() lm.Sparse {
	return t.Ranked(",", "]")
}

// Stop returns logits whose best token is a closing bracket.
func (t *Tokenizer) Stop() lm.Sparse {
	return t.Ranked("]", ",")
}

// Bool returns logits scoring true and false.
func (t *Tokenizer) Bool(trueScore, falseScore float32) lm.Sparse {
	return lm.Sparse{
		t.MustID("true"):  trueScore,
		t.MustID("false"): falseScore,
	}
}

// Neutral returns logits where no token carries a comma or bracket.
func (t *Tokenizer) Neutral() lm.Sparse {
	return lm.Sparse{
		t.MustID("true"): 0,
		t.MustID(EOS):    float32(math.Inf(-1)),
	}
}
