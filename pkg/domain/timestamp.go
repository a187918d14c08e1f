package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order when decoding backend timestamps.
// The backend emits RFC3339 with zone, but some columns come through as
// naive ISO-8601 or plain dates.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a nullable point in time decoded leniently from JSON.
// The zero value (and JSON null) means "not set".
type Timestamp struct {
	time.Time
}

// UnmarshalJSON accepts null, empty strings and the layouts above.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON writes null for the zero value and RFC3339 otherwise.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Set reports whether the timestamp carries a value.
func (t Timestamp) Set() bool {
	return !t.IsZero()
}

// ShortDate returns the MM-DD part of a YYYY-MM-DD date string, as used on
// chart axes. Strings that are too short are returned unchanged.
func ShortDate(date string) string {
	if len(date) >= 10 && date[4] == '-' {
		return date[5:10]
	}
	return date
}
