package types

import (
	"math"
	"time"
)

// Timestamp is a point in time expressed in nanoseconds since the Unix epoch.
type Timestamp uint64

// TimestampFromTime converts t to a Timestamp. Times before the epoch clamp
// to zero.
func TimestampFromTime(t time.Time) Timestamp {
	ns := t.UnixNano()
	if ns < 0 {
		return 0
	}
	return Timestamp(ns)
}

// Now returns the current wall-clock time as a Timestamp.
func Now() Timestamp {
	return TimestampFromTime(time.Now())
}

// Add returns t+d and false when the sum does not fit a Timestamp.
func (t Timestamp) Add(d time.Duration) (Timestamp, bool) {
	if d < 0 {
		if uint64(-d) > uint64(t) {
			return 0, false
		}
		return t - Timestamp(-d), true
	}
	if uint64(d) > math.MaxUint64-uint64(t) {
		return 0, false
	}
	return t + Timestamp(d), true
}

// Time converts the timestamp back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	if uint64(t) > math.MaxInt64 {
		return time.Unix(0, math.MaxInt64).UTC()
	}
	return time.Unix(0, int64(t)).UTC()
}
