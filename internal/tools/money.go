package tools

import (
	"fmt"
	"strings"
)

// money renders an MXN amount with thousands separators and cents,
// e.g. 250000 -> "$250,000.00".
func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, frac := parts[0], parts[1]

	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// wholeMoney renders an MXN amount without cents, e.g. "$250,000".
func wholeMoney(v float64) string {
	s := money(v)
	return strings.TrimSuffix(s, ".00")
}
