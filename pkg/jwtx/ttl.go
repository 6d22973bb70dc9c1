package jwtx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ttlPattern = regexp.MustCompile(`^(\d+)\s*(d|day|days|w|week|weeks)$`)

// ParseTTL reads a token lifetime. It accepts Go durations ("12h", "90m"),
// day and week counts ("1d", "2 weeks") and a bare integer as seconds.
// An empty string yields DefaultTokenTTL.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTokenTTL, nil
	}

	var ttl time.Duration
	if d, err := time.ParseDuration(s); err == nil {
		ttl = d
	} else if m := ttlPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("jwtx: invalid ttl %q: %w", s, err)
		}
		unit := 24 * time.Hour
		if strings.HasPrefix(m[2], "w") {
			unit *= 7
		}
		ttl = time.Duration(n) * unit
	} else if secs, err := strconv.Atoi(s); err == nil {
		ttl = time.Duration(secs) * time.Second
	} else {
		return 0, fmt.Errorf("jwtx: invalid ttl %q", s)
	}

	if ttl <= 0 {
		return 0, fmt.Errorf("jwtx: ttl must be positive, got %q", s)
	}
	return ttl, nil
}
