package config

import (
	"fmt"
	"strings"
	"time"
)

// ParseDurationField parses a Go-duration config value ("90s", "5m"). An
// empty or whitespace-only value means "not set" and parses to zero; the bot
// treats every duration as a minimum of zero, so negatives are rejected.
// path names the config key in error messages.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: bad duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", path, raw)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with a fallback for unset
// values. Callers use it for the tick, poll and busy-timeout knobs that all
// have sensible built-in defaults.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
