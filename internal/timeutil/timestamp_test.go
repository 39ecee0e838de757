package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampWireFormat(t *testing.T) {
	ts := FromMillis(1_700_000_000_000)

	payload, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_millis": 1700000000000}`, string(payload))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, ts, decoded)

	assert.Error(t, json.Unmarshal([]byte(`"2024-01-01"`), &decoded))
}

func TestTimestampConversions(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 30, 45, 123_456_789, time.UTC)
	ts := FromTime(now)

	assert.Equal(t, now.UnixMilli(), ts.ToMillis(), "sub-millisecond precision is truncated")
	assert.True(t, ts.Time().Equal(now.Truncate(time.Millisecond)))
	assert.Equal(t, time.UTC, ts.Time().Location())
}

func TestTimestampArithmetic(t *testing.T) {
	start := FromMillis(1_000)
	end := start.Add(14 * 24 * time.Hour)

	assert.Equal(t, int64(14*24*60*60*1000)+1_000, end.ToMillis())
	assert.True(t, start.Before(end))
	assert.False(t, end.Before(start))
	assert.False(t, start.Before(start))
}

func TestTimestampNow(t *testing.T) {
	before := time.Now().UnixMilli()
	ts := Now()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, ts.ToMillis(), before)
	assert.LessOrEqual(t, ts.ToMillis(), after)
}
