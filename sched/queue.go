// Copyright 2012 Lawrence Kesteloot

// Package sched is the cycle scheduler the emulated hardware runs on. Events
// are kept in a list sorted by the clock they're due at, and are dispatched
// as the CPU's cycle counter passes them.
package sched

// Kind identifies who owns a queued event, so that an owner can cancel its
// own events without knowing about anyone else's.
type Kind int

// Callback is run when an event becomes due.
type Callback func()

type event struct {
	kind     Kind
	callback Callback
	clock    uint64
	next     *event
}

// Queue is a list of events sorted by clock, plus the current clock.
type Queue struct {
	head *event

	// Clock from boot, in CPU cycles.
	clock uint64
}

// Clock returns the current time in CPU cycles.
func (q *Queue) Clock() uint64 {
	return q.clock
}

// Add queues up an event to happen deltaClock cycles from now.
func (q *Queue) Add(kind Kind, callback Callback, deltaClock uint64) {
	q.AddAt(kind, callback, q.clock+deltaClock)
}

// AddAt queues up an event to happen at clock. Events due at the same clock
// are dispatched in the order they were added.
func (q *Queue) AddAt(kind Kind, callback Callback, clock uint64) {
	e := &event{kind, callback, clock, nil}

	// Insert into list sorted by clock.
	eventPtr := &q.head
	for *eventPtr != nil && (*eventPtr).clock <= clock {
		eventPtr = &(*eventPtr).next
	}

	e.next = *eventPtr
	*eventPtr = e
}

// Cancel removes all events in the list that are of the given kind.
func (q *Queue) Cancel(kind Kind) {
	eventPtr := &q.head

	for *eventPtr != nil {
		nextEventPtr := &(*eventPtr).next

		if (*eventPtr).kind == kind {
			// Skip it.
			*eventPtr = *nextEventPtr
		} else {
			// Move to next one.
			eventPtr = nextEventPtr
		}
	}
}

// Pending returns the clock of the first event of the given kind, and whether
// there is one.
func (q *Queue) Pending(kind Kind) (uint64, bool) {
	for e := q.head; e != nil; e = e.next {
		if e.kind == kind {
			return e.clock, true
		}
	}

	return 0, false
}

// Next returns the clock of the earliest event, and whether there is one.
func (q *Queue) Next() (uint64, bool) {
	if q.head == nil {
		return 0, false
	}

	return q.head.clock, true
}

// Dispatch moves the clock to clock and runs all events that are due. Events
// run late if the clock jumped past them, the way they do when the CPU
// executes a whole instruction between checks.
func (q *Queue) Dispatch(clock uint64) {
	if clock > q.clock {
		q.clock = clock
	}

	for q.head != nil && q.head.clock <= q.clock {
		// Remove from list before calling, to allow callback to
		// modify the list.
		e := q.head
		q.head = e.next

		e.callback()
	}
}

// Run advances the clock by cycles, running each event at exactly the clock
// it was due at. Events added by callbacks are run too if they fall within
// the window.
func (q *Queue) Run(cycles uint64) {
	end := q.clock + cycles

	for q.head != nil && q.head.clock <= end {
		e := q.head
		q.head = e.next

		if e.clock > q.clock {
			q.clock = e.clock
		}
		e.callback()
	}

	q.clock = end
}

// RunUntil runs events until done returns true or limit cycles have passed.
// It returns whether done returned true. The clock is left at the event that
// satisfied done, not at the limit.
func (q *Queue) RunUntil(done func() bool, limit uint64) bool {
	end := q.clock + limit

	for !done() {
		if q.head == nil || q.head.clock > end {
			q.clock = end
			return false
		}

		e := q.head
		q.head = e.next

		if e.clock > q.clock {
			q.clock = e.clock
		}
		e.callback()
	}

	return true
}
