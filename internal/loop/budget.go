package loop

import (
	"sync"
	"time"
)

// errorBudget is a sliding-window failure counter. The loop stops once
// max failures land inside the window.
type errorBudget struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newErrorBudget(max int, window time.Duration) *errorBudget {
	return &errorBudget{max: max, window: window, now: time.Now}
}

// Record registers one failure and reports whether the budget is now
// exceeded.
func (b *errorBudget) Record() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	cutoff := now.Add(-b.window)
	kept := b.stamps[:0]
	for _, t := range b.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.stamps = append(kept, now)
	return len(b.stamps) >= b.max
}

// Reset clears recorded failures.
func (b *errorBudget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stamps = nil
}
