package ports

import "time"

// Clock abstracts "now" so SLA windows and conflict intervals are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
