package clock

import "time"

// Clock abstracts wall-clock time. Reflection windows are pure functions of
// (entities, now), so fixing Now makes every state computation deterministic.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
