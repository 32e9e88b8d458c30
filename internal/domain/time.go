package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// apiTimeLayouts are the timestamp shapes the API emits. Python isoformat()
// drops the zone for naive UTC datetimes.
var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// APITime is a timestamp that tolerates the API's zone-less and null values.
type APITime struct {
	time.Time
}

// UnmarshalJSON accepts null, "" and any of apiTimeLayouts.
func (t *APITime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range apiTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON writes RFC 3339 or null.
func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Date renders the calendar date or an empty string.
func (t APITime) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
