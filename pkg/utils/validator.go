package utils

import (
	"fmt"
	"regexp"
	"strconv"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:@+\-]{0,127}$`)

// ValidateIdentifier checks a case, item or user identifier supplied by a client
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s is required", kind)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("invalid %s: %q", kind, id)
	}
	return nil
}

// ParseSeconds parses a whole number of seconds, using def when raw is empty.
// The sign is not checked here; callers reject non-positive values.
func ParseSeconds(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds value %q", raw)
	}
	return seconds, nil
}
