package clock

import "time"

// Clock supplies the current instant. Budget math only ever reads it;
// nothing in this module schedules work off a Clock.
//
// System() hands back time.Time values carrying Go's monotonic
// reading, so a duration computed between two reads never goes
// backward even if the wall clock steps.
type Clock interface {
	Now() time.Time
}

// System returns a Clock backed by time.Now().
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
