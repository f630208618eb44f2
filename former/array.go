package former

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/value"
)

// continueArray asks the model whether the array at path gets another
// element. It looks at the most likely tokens after the last element: the
// first one holding a comma means continue, the first one holding a closing
// bracket means stop. If neither shows up the array is closed.
func (s *session) continueArray(path value.Path) (bool, error) {
	// The prompt ends after the last element so the next token is the
	// separator or the closing bracket itself.
	p, err := s.prompt(value.CloseAt(path))
	if err != nil {
		return false, err
	}
	s.f.debug.Prompt("[generate_array]", p)

	logits, err := s.forward(p)
	if err != nil {
		return false, err
	}

	for _, ts := range logits.TopK(s.f.config.ContinuationTopK) {
		text, err := s.f.tokenizer.Decode([]int{ts.ID}, false)
		if err != nil {
			return false, fmt.Errorf("former: decode token %d: %w", ts.ID, err)
		}
		if strings.Contains(text, ",") {
			s.decided(path, true, text)
			return true, nil
		}
		if strings.Contains(text, "]") {
			s.decided(path, false, text)
			return false, nil
		}
	}

	s.decided(path, false, "")
	return false, nil
}

func (s *session) decided(path value.Path, more bool, token string) {
	s.logger.Debug("array continuation",
		zap.Stringer("path", path),
		zap.Bool("continue", more),
		zap.String("token", token),
	)
	if more {
		s.f.debug.Value("[generate_array]", "continue")
	} else {
		s.f.debug.Value("[generate_array]", "stop")
	}
}
