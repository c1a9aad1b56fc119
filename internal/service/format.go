package service

import (
	"strings"
	"time"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/apperror"
)

// Response layouts. Clients rely on day/month/year ordering.
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04:05"
	ClockLayout    = "15:04:05"
)

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(DateLayout)
	return &formatted
}

// normalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func normalizeClock(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format(ClockLayout), nil
		}
	}
	return "", apperror.New(apperror.CodeValidation, "time must be in HH:MM or HH:MM:SS format")
}

// clockFromStore trims fractional seconds the store may append to a TIME value.
func clockFromStore(raw string) string {
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		return raw[:i]
	}
	return raw
}
