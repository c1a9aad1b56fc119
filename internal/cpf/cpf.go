// Package cpf validates Brazilian taxpayer identifiers (CPF).
package cpf

import "strings"

const length = 11

// Normalize drops every non-digit character, so "123.456.789-09" becomes
// "12345678909".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether raw carries 11 digits whose last two match the
// CPF check-digit formula. Punctuation is ignored.
func IsValid(raw string) bool {
	digits := Normalize(raw)
	if len(digits) != length {
		return false
	}
	if strings.Count(digits, digits[:1]) == length {
		return false
	}

	return checkDigit(digits, 10) == int(digits[9]-'0') &&
		checkDigit(digits, 11) == int(digits[10]-'0')
}

// checkDigit weights the first weight-1 digits from weight down to 2.
func checkDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < weight-1; i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
