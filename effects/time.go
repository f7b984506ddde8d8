package effects

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

type TimeSpan = timespan.TimeSpan

func NewTimeSpan(from, to time.Time) TimeSpan {
	return timespan.BetweenTimes(from, to)
}

// since spans from start to now.
func since(start time.Time) TimeSpan {
	return NewTimeSpan(start, time.Now())
}
