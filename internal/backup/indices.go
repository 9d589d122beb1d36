package backup

import (
	"strconv"
	"strings"
)

// ParseIndices reads a job selection such as "1-3" (inclusive range) or
// "1;2;4" (list, commas also accepted). Tokens that are not numbers are
// dropped; a reversed range selects nothing.
func ParseIndices(expr string) []int {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	var out []int
	for _, tok := range strings.FieldsFunc(expr, func(r rune) bool {
		return r == ';' || r == ','
	}) {
		tok = strings.TrimSpace(tok)

		if lo, hi, ok := strings.Cut(tok, "-"); ok {
			a, errA := strconv.Atoi(strings.TrimSpace(lo))
			b, errB := strconv.Atoi(strings.TrimSpace(hi))
			if errA != nil || errB != nil {
				continue
			}
			for i := a; i <= b; i++ {
				out = append(out, i)
			}
			continue
		}

		if n, err := strconv.Atoi(tok); err == nil {
			out = append(out, n)
		}
	}

	return out
}
