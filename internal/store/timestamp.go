package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// legacyLayout is the naive ISO-8601 form found in older data files.
const legacyLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a creation time that also accepts timestamps without a zone.
type Timestamp struct {
	time.Time
}

// MarshalJSON encodes the time as RFC 3339 with nanoseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339, zone-less ISO-8601 (read as UTC), empty strings and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(legacyLayout, raw, time.UTC)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

func newestFirst(a, b Timestamp) int {
	return b.Compare(a.Time)
}
