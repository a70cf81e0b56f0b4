// Package engine runs the colony control cycle. Each cycle schedules
// production per territory, assigns idle agents to work, and advances a
// minimal world model so the next cycle sees the consequences.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// CyclesPerReport is how often the loop fires OnReport.
const CyclesPerReport = 100

// Loop drives the colony forward one cycle at a time.
type Loop struct {
	Cycle    uint64        // Last completed cycle (monotonic)
	Interval time.Duration // Wall time per cycle, 0 runs flat out
	Limit    uint64        // Stop once Cycle reaches Limit, 0 never stops

	// Callbacks, populated during setup.
	OnCycle  func(cycle uint64) // Every cycle
	OnReport func(cycle uint64) // Every CyclesPerReport cycles and on stop
}

// NewLoop creates a loop with the given cycle interval.
func NewLoop(interval time.Duration) *Loop {
	return &Loop{Interval: interval}
}

// Run blocks until ctx is cancelled or the cycle limit is reached.
func (l *Loop) Run(ctx context.Context) {
	slog.Info("colony loop started", "cycle", l.Cycle, "interval", l.Interval, "limit", l.Limit)

	for l.Limit == 0 || l.Cycle < l.Limit {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()

		l.Step()

		if wait := l.Interval - time.Since(start); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	if l.OnReport != nil {
		l.OnReport(l.Cycle)
	}
	slog.Info("colony loop stopped", "cycle", l.Cycle)
}

// Step runs exactly one cycle.
func (l *Loop) Step() {
	l.Cycle++

	if l.OnCycle != nil {
		l.OnCycle(l.Cycle)
	}
	if l.Cycle%CyclesPerReport == 0 && l.OnReport != nil {
		l.OnReport(l.Cycle)
	}
}
