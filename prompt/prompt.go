// Package prompt assembles the text a model continues from: the caller's
// instruction, the schema, and the output built so far cut off at the
// pending position.
package prompt

import (
	"fmt"
	"strings"

	"github.com/lemon-mint/jsonformer/schema"
	"github.com/lemon-mint/jsonformer/value"
)

const (
	PlaceholderPrompt   = "{prompt}"
	PlaceholderSchema   = "{schema}"
	PlaceholderProgress = "{progress}"
)

const DefaultTemplate = "{prompt}\nOutput result in the following JSON schema format:\n{schema}\nResult: {progress}"

type Assembler struct {
	instruction string
	schemaJSON  string
	template    string
}

// New prepares an assembler. The schema is encoded once up front.
// An empty template selects DefaultTemplate.
func New(instruction string, s schema.Node, template string) (*Assembler, error) {
	if template == "" {
		template = DefaultTemplate
	}
	// The model continues the prompt, so the partial output must come last.
	if !strings.HasSuffix(template, PlaceholderProgress) {
		return nil, fmt.Errorf("prompt: template must end with %s", PlaceholderProgress)
	}

	b, err := schema.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("prompt: encode schema: %w", err)
	}

	return &Assembler{
		instruction: instruction,
		schemaJSON:  string(b),
		template:    template,
	}, nil
}

// Assemble renders the prompt for the position c in root.
func (a *Assembler) Assemble(root value.Value, c value.Cursor) (string, error) {
	progress, err := value.AppendUntil(nil, root, c)
	if err != nil {
		return "", err
	}

	// Placeholders expand once each in a single pass over the template, so
	// text coming from the instruction is never expanded again.
	var sb strings.Builder
	sb.Grow(len(a.template) + len(a.instruction) + len(a.schemaJSON) + len(progress))
	var usedPrompt, usedSchema, usedProgress bool
	rest := a.template
	for {
		i := strings.IndexByte(rest, '{')
		if i < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:i])
		rest = rest[i:]
		switch {
		case !usedPrompt && strings.HasPrefix(rest, PlaceholderPrompt):
			usedPrompt = true
			sb.WriteString(a.instruction)
			rest = rest[len(PlaceholderPrompt):]
		case !usedSchema && strings.HasPrefix(rest, PlaceholderSchema):
			usedSchema = true
			sb.WriteString(a.schemaJSON)
			rest = rest[len(PlaceholderSchema):]
		case !usedProgress && strings.HasPrefix(rest, PlaceholderProgress):
			usedProgress = true
			sb.Write(progress)
			rest = rest[len(PlaceholderProgress):]
		default:
			sb.WriteByte('{')
			rest = rest[1:]
		}
	}

	return sb.String(), nil
}

// Schema returns the encoded schema embedded in every prompt.
func (a *Assembler) Schema() string {
	return a.schemaJSON
}
