// Package former fills a JSON schema with values sampled from a language
// model. The structural JSON is written by the package; the model is only
// asked for one scalar at a time, at a position marked by a cursor.
package former

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/format"
	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/prompt"
	"github.com/lemon-mint/jsonformer/schema"
	"github.com/lemon-mint/jsonformer/value"
)

type Former struct {
	model     lm.Model
	tokenizer lm.Tokenizer
	schema    *schema.Object
	assembler *prompt.Assembler

	config Config
	logger *zap.Logger
	debug  *format.Debugger
}

// New prepares a generator for s. The top level of s must be an object with
// at least one property; anything else is a *ConfigurationError.
func New(model lm.Model, tokenizer lm.Tokenizer, s schema.Node, instruction string, opts ...Option) (*Former, error) {
	if model == nil || tokenizer == nil {
		return nil, fmt.Errorf("%w: model and tokenizer are required", ErrInvalidOption)
	}

	o := defaultOptions()
	for i := range opts {
		if err := opts[i].apply(&o); err != nil {
			return nil, err
		}
	}
	if err := o.config.validate(); err != nil {
		return nil, err
	}

	root, ok := s.(*schema.Object)
	if !ok || root == nil {
		return nil, configErr(nil, "top level schema must be an object, got %T", s)
	}
	if len(root.Properties) == 0 {
		return nil, configErr(nil, "missing properties in schema")
	}
	if err := validate(root, nil); err != nil {
		return nil, err
	}

	assembler, err := prompt.New(instruction, root, o.config.Template)
	if err != nil {
		return nil, err
	}

	f := &Former{
		model:     model,
		tokenizer: tokenizer,
		schema:    root,
		assembler: assembler,
		config:    o.config,
		logger:    o.logger,
	}
	if o.config.Debug {
		f.debug = format.NewDebugger(o.debugWriter)
	}

	return f, nil
}

// validate rejects nodes the walker cannot dispatch on before any model call
// is made.
func validate(n schema.Node, path value.Path) error {
	switch n := n.(type) {
	case *schema.Object:
		if n == nil {
			return configErr(path, "nil object schema")
		}
		seen := make(map[string]struct{}, len(n.Properties))
		for _, p := range n.Properties {
			if _, ok := seen[p.Name]; ok {
				return configErr(path, "duplicate property %q", p.Name)
			}
			seen[p.Name] = struct{}{}
			if err := validate(p.Schema, path.Child(value.Key(p.Name))); err != nil {
				return err
			}
		}
		return nil
	case *schema.Array:
		if n == nil {
			return configErr(path, "nil array schema")
		}
		return validate(n.Items, path.Child(value.Index(0)))
	case *schema.String:
		if n == nil {
			return configErr(path, "nil string schema")
		}
		return nil
	case *schema.Number:
		if n == nil {
			return configErr(path, "nil number schema")
		}
		return nil
	case *schema.Boolean:
		if n == nil {
			return configErr(path, "nil boolean schema")
		}
		return nil
	}
	return configErr(path, "unsupported schema node %T", n)
}

// Call runs one generation and returns the completed object. Model calls are
// made one at a time; Call does not guard the model against concurrent use by
// other goroutines (see lm.Serialize).
func (f *Former) Call(ctx context.Context) (*value.Object, error) {
	s := &session{
		ctx:    ctx,
		f:      f,
		root:   value.NewObject(),
		logger: f.logger.With(zap.String("session", uuid.NewString())),
	}

	start := time.Now()
	s.logger.Debug("generation started",
		zap.String("model", f.model.Name()),
		zap.Int("properties", len(f.schema.Properties)),
	)

	if err := s.generateObject(f.schema, s.root, nil); err != nil {
		s.logger.Debug("generation failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("generation finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("model_calls", s.calls),
	)
	return s.root, nil
}

// Prompt renders the prompt for c against a partial result. It is the same
// text the leaf generators send to the model.
func (f *Former) Prompt(partial value.Value, c value.Cursor) (string, error) {
	return f.assembler.Assemble(partial, c)
}

// session is the state of one Call. It is never shared between goroutines.
type session struct {
	ctx    context.Context
	f      *Former
	root   *value.Object
	logger *zap.Logger
	calls  int

	trueID, falseID int
	boolIDs         bool
}

func (s *session) prompt(c value.Cursor) (string, error) {
	p, err := s.f.assembler.Assemble(s.root, c)
	if err != nil {
		return "", fmt.Errorf("former: assemble prompt at %s: %w", c, err)
	}
	return p, nil
}

// sample runs Generate on text and returns the decoded continuation.
func (s *session) sample(text string, maxTokens int, temperature float32, stop []string) (string, error) {
	tok := s.f.tokenizer
	in, err := tok.Encode(text)
	if err != nil {
		return "", fmt.Errorf("former: encode prompt: %w", err)
	}

	config := &lm.GenerateConfig{
		MaxNewTokens:       lm.Ptrify(maxTokens),
		Temperature:        lm.Ptrify(temperature),
		PadTokenID:         lm.Ptrify(tok.EOSTokenID()),
		NumReturnSequences: lm.Ptrify(1),
		Seed:               s.f.config.Seed,
		Stop:               stop,
	}

	s.calls++
	out, err := s.f.model.Generate(s.ctx, in, config)
	if err != nil {
		return "", fmt.Errorf("former: generate: %w", err)
	}

	cont, err := lm.Continuation(tok, out, len(in))
	if err != nil {
		return "", fmt.Errorf("former: decode continuation: %w", err)
	}

	s.logger.Debug("sampled",
		zap.Int("prompt_tokens", len(in)),
		zap.Int("new_tokens", len(out)-len(in)),
		zap.Float32("temperature", temperature),
		zap.String("continuation", cont),
	)
	return cont, nil
}

// forward runs a single forward pass on text.
func (s *session) forward(text string) (lm.Logits, error) {
	in, err := s.f.tokenizer.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("former: encode prompt: %w", err)
	}

	s.calls++
	out, err := s.f.model.Forward(s.ctx, in)
	if err != nil {
		return nil, fmt.Errorf("former: forward: %w", err)
	}
	if out == nil || out.Logits == nil {
		return nil, fmt.Errorf("former: forward: %w", lm.ErrNoResponse)
	}
	return out.Logits, nil
}
