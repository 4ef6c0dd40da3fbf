package recon

import "time"

// Clock abstraction so time-dependent behavior is testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
