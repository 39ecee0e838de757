package timeutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a millisecond-precision, UTC point-in-time value used for
// audit fields and trial-window arithmetic. It serializes to the wire form
// {"_millis": <int64>} so documents stay transportable as plain JSON.
type Timestamp struct {
	millis int64
}

// Now returns the current server time truncated to millisecond precision.
func Now() Timestamp {
	return Timestamp{millis: time.Now().UTC().UnixMilli()}
}

// FromMillis builds a Timestamp from milliseconds since the Unix epoch.
func FromMillis(millis int64) Timestamp {
	return Timestamp{millis: millis}
}

// FromTime builds a Timestamp from a time.Time, truncating to milliseconds.
func FromTime(t time.Time) Timestamp {
	return Timestamp{millis: t.UTC().UnixMilli()}
}

// ToMillis returns milliseconds since the Unix epoch.
func (t Timestamp) ToMillis() int64 {
	return t.millis
}

// Time returns the timestamp as a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(t.millis).UTC()
}

// Add returns the timestamp shifted by the given duration.
func (t Timestamp) Add(d time.Duration) Timestamp {
	return Timestamp{millis: t.millis + d.Milliseconds()}
}

// Before reports whether t is strictly earlier than other.
func (t Timestamp) Before(other Timestamp) bool {
	return t.millis < other.millis
}

// String implements fmt.Stringer for log output.
func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}

type wireTimestamp struct {
	Millis int64 `json:"_millis"`
}

// MarshalJSON emits the {"_millis": n} wire form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireTimestamp{Millis: t.millis})
}

// UnmarshalJSON accepts the {"_millis": n} wire form.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var wire wireTimestamp
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("timeutil: invalid timestamp payload: %w", err)
	}
	t.millis = wire.Millis
	return nil
}
