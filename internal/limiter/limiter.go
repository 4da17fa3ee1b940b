package limiter

import (
	"runtime"
	"time"
)

// CPULimiter throttles CPU usage to a maximum percentage.
// Sweeps over large workspaces share the machine with builds; the
// throttle keeps the walk from monopolizing a core.
type CPULimiter struct {
	maxPercent float64
	lastSleep  time.Time
}

// NewCPULimiter creates a new CPU limiter
func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		lastSleep:  time.Now(),
	}
}

// Throttle sleeps to limit CPU usage to maxPercent.
// This is a simple sleep-based implementation; for accurate control
// use cgroups or systemd limits.
func (l *CPULimiter) Throttle() {
	if l.maxPercent <= 0 || l.maxPercent >= 100 {
		return // No limit or invalid
	}

	sleepPercent := 100.0 - l.maxPercent

	workTime := 10 * time.Millisecond
	sleepTime := time.Duration(float64(workTime) * (sleepPercent / l.maxPercent))

	if time.Since(l.lastSleep) > workTime {
		time.Sleep(sleepTime)
		l.lastSleep = time.Now()
	}

	runtime.Gosched()
}
