package former

import (
	"strings"

	"github.com/lemon-mint/jsonformer/value"
)

func (s *session) generateString(path value.Path) (value.String, error) {
	p, err := s.prompt(value.SlotAt(path))
	if err != nil {
		return "", err
	}
	p += `"`
	s.f.debug.Prompt("[generate_string]", p)

	// No stop sequence: servers drop the matched stop text, and the closing
	// quote is what tells a finished literal from a truncated one.
	text, err := s.sample(p, s.f.config.MaxStringTokenLength, s.f.config.Temperature, nil)
	if err != nil {
		return "", err
	}
	s.f.debug.Value("[generate_string]", "|"+text+"|")

	return value.String(cleanString(text)), nil
}

// cleanString cuts a continuation at the quote that closes the literal. A
// continuation without a quote ran out of tokens and is kept as is.
func cleanString(text string) string {
	i := strings.IndexByte(text, '"')
	if i < 0 {
		return text
	}
	return strings.TrimSpace(text[:i])
}
