package sched

import "runtime"

// DefaultInterval is the number of steps between cooperative yields.
const DefaultInterval = 1 << 16

// Yielder hands the processor back to the scheduler every Interval calls to
// Step. Long single-threaded scans use it so they do not starve other
// goroutines in the host process. It never affects results.
type Yielder struct {
	Interval int
	steps    int
	total    int
}

// NewYielder returns a Yielder using DefaultInterval.
func NewYielder() *Yielder {
	return &Yielder{Interval: DefaultInterval}
}

// Step records one unit of work and yields when the interval is reached.
func (y *Yielder) Step() {
	if y == nil {
		return
	}
	y.steps++
	y.total++
	interval := y.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	if y.steps >= interval {
		y.steps = 0
		runtime.Gosched()
	}
}

// Steps returns the number of Step calls made so far.
func (y *Yielder) Steps() int {
	if y == nil {
		return 0
	}
	return y.total
}
