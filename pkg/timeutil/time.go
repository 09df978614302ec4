package timeutil

import (
	"fmt"
	"time"
)

// TerminalDateTimeLength is the length of a formatted terminal timestamp (yyyyMMddHHmmssSSS)
const TerminalDateTimeLength = 17

// Clock returns the current time; swapped out in tests
type Clock func() time.Time

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// FormatTerminalDateTime renders t as yyyyMMddHHmmssSSS with no separators
func FormatTerminalDateTime(t time.Time) string {
	return fmt.Sprintf("%s%03d", t.Format("20060102150405"), t.Nanosecond()/int(time.Millisecond))
}

// ParseTerminalDateTime is the inverse of FormatTerminalDateTime; the result is in UTC
func ParseTerminalDateTime(value string) (time.Time, error) {
	if len(value) != TerminalDateTimeLength {
		return time.Time{}, fmt.Errorf("terminal date time must be %d digits, got %d", TerminalDateTimeLength, len(value))
	}
	t, err := time.Parse("20060102150405.000", value[:14]+"."+value[14:])
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// IsTerminalDateTime reports whether value is exactly 17 ASCII digits
func IsTerminalDateTime(value string) bool {
	if len(value) != TerminalDateTimeLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
