package token

import (
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var compactDurationRE = regexp.MustCompile(`^(\d+)([smhd])$`)

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseTTL converts a token lifetime expression into a duration. Two
// forms are accepted: a plain integer number of seconds ("604800",
// negative allowed) or a compact duration string ("7d", "45m").
// Anything else is a construction error.
func ParseTTL(ttl string) (time.Duration, error) {
	if ttl == "" {
		return 0, errors.New("empty ttl")
	}

	if seconds, err := strconv.ParseInt(ttl, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	m := compactDurationRE.FindStringSubmatch(ttl)
	if m == nil {
		return 0, errors.Errorf("invalid ttl format: %q", ttl)
	}

	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid ttl value: %q", ttl)
	}

	return time.Duration(value) * durationUnits[m[2]], nil
}
