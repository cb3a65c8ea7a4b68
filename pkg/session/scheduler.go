package session

import "time"

// Timer is a scheduled delivery that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler delivers ev after d by calling deliver.
type Scheduler interface {
	Schedule(d time.Duration, ev Event, deliver func(Event)) Timer
}

// TimeScheduler uses the runtime timers.
type TimeScheduler struct{}

func (TimeScheduler) Schedule(d time.Duration, ev Event, deliver func(Event)) Timer {
	return time.AfterFunc(d, func() { deliver(ev) })
}
