// Copyright 2012 Lawrence Kesteloot

package sched

// Timer gives one owner a single pending callback on a queue. Scheduling a
// new callback replaces the previous one.
type Timer struct {
	queue *Queue
	kind  Kind
}

// Timer returns a timer for events of the given kind.
func (q *Queue) Timer(kind Kind) *Timer {
	return &Timer{q, kind}
}

// Clock returns the queue's current clock.
func (t *Timer) Clock() uint64 {
	return t.queue.clock
}

// ScheduleAfter replaces any pending callback with one that runs cycles from
// now.
func (t *Timer) ScheduleAfter(cycles uint64, callback func()) {
	t.queue.Cancel(t.kind)
	t.queue.Add(t.kind, callback, cycles)
}

// Cancel drops the pending callback, if any.
func (t *Timer) Cancel() {
	t.queue.Cancel(t.kind)
}

// Pending returns whether a callback is waiting.
func (t *Timer) Pending() bool {
	_, ok := t.queue.Pending(t.kind)
	return ok
}
