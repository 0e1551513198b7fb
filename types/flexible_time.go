package types

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// FlexibleTime unmarshals timestamps that may be RFC3339/RFC3339Nano or lack a timezone.
// History records written by older API versions carry values like
// "2025-04-14T02:31:00.353" (no offset) or "2025-04-14 02:31:00".
type FlexibleTime struct {
	time.Time
}

func NewFlexibleTime(t time.Time) FlexibleTime {
	return FlexibleTime{Time: t}
}

func (t FlexibleTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Time.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t *FlexibleTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time JSON: %q", string(b))
	}

	parsed, err := ParseTimestamp(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp accepts the layouts FlexibleTime understands. An empty
// string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999", // no tz, fractional seconds
		"2006-01-02T15:04:05",           // no tz
		"2006-01-02 15:04:05.999999999", // sql style
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
