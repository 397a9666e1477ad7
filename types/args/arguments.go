package args

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HeaderArgs collects repeated -H "Name: Value" flags.
type HeaderArgs []string

func (h *HeaderArgs) Set(val string) error {
	if !strings.Contains(val, ":") {
		return fmt.Errorf("header %q is not in \"Name: Value\" form", val)
	}
	*h = append(*h, val)
	return nil
}

func (h HeaderArgs) String() string {
	return strings.Join(h, ", ")
}

func (h HeaderArgs) Type() string {
	return "header"
}

func (h HeaderArgs) Map() map[string]string {
	headers := make(map[string]string, len(h))
	for _, raw := range h {
		name, value, _ := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers
}

// SplitChars turns "a,b,c" into its non-empty elements. Whitespace is kept
// since a space is a valid test character.
func SplitChars(list string) []string {
	var chars []string
	for _, c := range strings.Split(list, ",") {
		if c != "" {
			chars = append(chars, c)
		}
	}
	return chars
}

// ParseDelayRange parses "min,max" in (fractional) seconds. Ordering of the
// bounds is checked by scan.Config.Validate.
func ParseDelayRange(raw string) (time.Duration, time.Duration, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"min,max\", got %q", raw)
	}

	bounds := make([]time.Duration, 2)
	for i, part := range parts {
		seconds, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bad delay bound %q: %w", part, err)
		}
		bounds[i] = time.Duration(seconds * float64(time.Second))
	}

	return bounds[0], bounds[1], nil
}
