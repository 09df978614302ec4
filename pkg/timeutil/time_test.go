package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNow_AlwaysUTC(t *testing.T) {
	now := Now()

	if now.Location() != time.UTC {
		t.Errorf("Now() returned non-UTC timezone: %v", now.Location())
	}
}

func TestFormatTerminalDateTime(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "whole second",
			input:    time.Date(2013, 3, 1, 12, 0, 0, 0, time.UTC),
			expected: "20130301120000000",
		},
		{
			name:     "milliseconds are zero padded",
			input:    time.Date(2025, 11, 20, 9, 5, 7, 7*int(time.Millisecond), time.UTC),
			expected: "20251120090507007",
		},
		{
			name:     "sub-millisecond precision is truncated",
			input:    time.Date(2025, 12, 31, 23, 59, 59, 999999999, time.UTC),
			expected: "20251231235959999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatTerminalDateTime(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Len(t, got, TerminalDateTimeLength)
		})
	}
}

func TestParseTerminalDateTime_RoundTrip(t *testing.T) {
	in := time.Date(2024, 2, 29, 18, 45, 12, 345*int(time.Millisecond), time.UTC)

	parsed, err := ParseTerminalDateTime(FormatTerminalDateTime(in))
	require.NoError(t, err)
	assert.True(t, in.Equal(parsed), "got %v want %v", parsed, in)
}

func TestParseTerminalDateTime_Invalid(t *testing.T) {
	_, err := ParseTerminalDateTime("2013030112")
	assert.Error(t, err)

	_, err = ParseTerminalDateTime("2013133112000000x")
	assert.Error(t, err)
}

func TestIsTerminalDateTime(t *testing.T) {
	assert.True(t, IsTerminalDateTime("20130301120000000"))
	assert.False(t, IsTerminalDateTime("2013030112000000"))
	assert.False(t, IsTerminalDateTime("2013-03-01T12:00:0"))
	assert.False(t, IsTerminalDateTime(""))
}
