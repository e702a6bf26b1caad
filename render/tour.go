package render

import "time"

// Tour cycles through a list of bodies, handing out the next name each time
// the interval elapses.
type Tour struct {
	names    []string
	interval time.Duration
	next     int
	due      time.Time
}

// NewTour returns a tour whose first Next call fires immediately.
func NewTour(names []string, interval time.Duration) *Tour {
	return &Tour{
		names:    append([]string(nil), names...),
		interval: interval,
	}
}

// Next returns the body to retarget to when one is due at now.
func (t *Tour) Next(now time.Time) (string, bool) {
	if len(t.names) == 0 {
		return "", false
	}
	if !t.due.IsZero() && now.Before(t.due) {
		return "", false
	}
	name := t.names[t.next]
	t.next = (t.next + 1) % len(t.names)
	t.due = now.Add(t.interval)
	return name, true
}

// Skip drops the pending interval so the following Next fires at once.
func (t *Tour) Skip() {
	t.due = time.Time{}
}
