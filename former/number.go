package former

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lemon-mint/jsonformer/value"
)

// numberStops end a number literal in a JSON document.
var numberStops = []string{",", "\n", "}", "]"}

var numberPrefix = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

func (s *session) generateNumber(path value.Path) (value.Number, error) {
	p, err := s.prompt(value.SlotAt(path))
	if err != nil {
		return 0, err
	}
	s.f.debug.Prompt("[generate_number]", p)

	cfg := &s.f.config
	temperature := cfg.Temperature
	var last string
	for attempt := 0; attempt <= cfg.NumberRetries; attempt++ {
		if attempt > 0 {
			temperature *= cfg.RetryTemperatureFactor
			s.logger.Debug("retrying number",
				zap.Stringer("path", path),
				zap.Int("attempt", attempt),
				zap.Float32("temperature", temperature),
			)
		}

		text, err := s.sample(p, cfg.MaxNumberTokens, temperature, numberStops)
		if err != nil {
			return 0, err
		}
		s.f.debug.Value("[generate_number]", text)

		if n, ok := parseNumber(text); ok {
			return value.Number(n), nil
		}
		last = text
	}

	return 0, &GenerationFailure{
		Path:     path,
		Attempts: cfg.NumberRetries + 1,
		Last:     last,
		Err:      ErrNumber,
	}
}

// parseNumber reads the number a continuation starts with. Surrounding space
// and a trailing period left by an unfinished token are ignored, and anything
// after the literal is dropped.
func parseNumber(text string) (float64, bool) {
	t := strings.TrimSpace(text)
	t = strings.TrimSuffix(t, ".")

	lit := numberPrefix.FindString(t)
	if lit == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
