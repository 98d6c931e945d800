package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// thousandsGrouped matches numbers whose commas are unambiguous thousands
// separators (1,234 or -12,345,678.9). Anything else with a comma, such as
// a decimal-comma "1,5", must fail coercion rather than be reinterpreted.
var thousandsGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// CoerceNumeric parses a raw fact value into a float64. Surrounding
// whitespace and thousands-grouped commas are tolerated; anything else fails
// the coercion, which callers treat as "value absent", not as an error.
func CoerceNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if thousandsGrouped.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
