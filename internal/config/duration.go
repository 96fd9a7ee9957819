package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DurationOrDefault parses value, falling back to defaultValue when value is
// blank. A bare integer is read as seconds, so PLANPAL_CALENDAR_REQUEST_TIMEOUT=20
// works. Negative durations are rejected.
func DurationOrDefault(value string, defaultValue string) (time.Duration, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		candidate = strings.TrimSpace(defaultValue)
	}
	if candidate == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	if secs, err := strconv.Atoi(candidate); err == nil {
		candidate = strconv.Itoa(secs) + "s"
	}

	d, err := time.ParseDuration(candidate)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", candidate, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q is negative", candidate)
	}
	return d, nil
}
