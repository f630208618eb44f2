package former

import (
	"fmt"
	"strconv"

	"github.com/lemon-mint/jsonformer/value"
)

func (s *session) generateBoolean(path value.Path) (value.Bool, error) {
	p, err := s.prompt(value.SlotAt(path))
	if err != nil {
		return false, err
	}
	s.f.debug.Prompt("[generate_boolean]", p)

	if !s.boolIDs {
		if s.trueID, err = s.f.tokenizer.TokenID("true"); err != nil {
			return false, fmt.Errorf("former: token id of true: %w", err)
		}
		if s.falseID, err = s.f.tokenizer.TokenID("false"); err != nil {
			return false, fmt.Errorf("former: token id of false: %w", err)
		}
		s.boolIDs = true
	}

	logits, err := s.forward(p)
	if err != nil {
		return false, err
	}

	// A tie picks false.
	result := logits.Score(s.trueID) > logits.Score(s.falseID)
	s.f.debug.Value("[generate_boolean]", strconv.FormatBool(result))

	return value.Bool(result), nil
}
