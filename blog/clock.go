package blog

import "time"

// Clock supplies the current time to the visibility rules. Publication of
// future-dated posts is decided lazily at read time against this clock,
// never by a background job.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
