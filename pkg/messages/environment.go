package messages

import (
	"fmt"
	"strings"
)

// Environment selects which gateway base URL a client talks to
type Environment string

const (
	EnvironmentLive Environment = "LIVE"
	EnvironmentTest Environment = "TEST"
)

// ParseEnvironment accepts LIVE or TEST in any letter case
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToUpper(strings.TrimSpace(s))) {
	case EnvironmentLive:
		return EnvironmentLive, nil
	case EnvironmentTest:
		return EnvironmentTest, nil
	default:
		return "", fmt.Errorf("unknown environment %q (want LIVE or TEST)", s)
	}
}
