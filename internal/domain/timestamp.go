package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimestampLayout is the textual form of every timestamp the API emits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp renders as ISO-8601 UTC text. A zero value renders as null.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

func (ts Timestamp) Time() time.Time {
	return time.Time(ts)
}

func (ts Timestamp) IsZero() bool {
	return time.Time(ts).IsZero()
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(ts).UTC().Format(TimestampLayout))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*ts = Timestamp(t)
	return nil
}
