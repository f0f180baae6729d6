package lease

import (
	"errors"
	"sync"
	"time"
)

// Lease tracker errors.
var (
	ErrTimerNotFound = errors.New("lease timer not found")
	ErrInvalidLease  = errors.New("invalid lease duration")
)

// Lease limits.
const (
	// MinLease is the shortest lease worth tracking (1 second).
	MinLease = 1 * time.Second

	// MaxLease is the longest lease gateways accept (one week).
	MaxLease = 7 * 24 * time.Hour
)

// timerKey uniquely identifies a timer.
type timerKey struct {
	port  int
	proto string
}

// Timer represents one tracked mapping lease.
type Timer struct {
	// ExternalPort and Protocol identify the mapping.
	ExternalPort int
	Protocol     string

	// StartTime is when the lease started.
	StartTime time.Time

	// Duration is the lease length.
	Duration time.Duration

	// timer is the Go timer for automatic expiry
	timer *time.Timer
}

// ExpiresAt returns when the lease will run out.
func (t *Timer) ExpiresAt() time.Time {
	return t.StartTime.Add(t.Duration)
}

// Remaining returns time until expiry.
func (t *Timer) Remaining() time.Duration {
	remaining := t.Duration - time.Since(t.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired returns true if the lease has run out.
func (t *Timer) IsExpired() bool {
	return time.Since(t.StartTime) >= t.Duration
}

// Tracker mirrors the lifetimes of leased mappings.
type Tracker struct {
	mu sync.RWMutex

	// Active timers by (external port, protocol)
	timers map[timerKey]*Timer

	// Callback when a lease runs out
	onExpiry func(externalPort int, protocol string)
}

// NewTracker creates an empty lease tracker.
func NewTracker() *Tracker {
	return &Tracker{
		timers: make(map[timerKey]*Timer),
	}
}

// Track starts (or restarts) the timer for a mapping's lease. The timer
// starts immediately. Returns an error if the duration is out of range.
func (tr *Tracker) Track(externalPort int, protocol string, duration time.Duration) error {
	if duration < MinLease || duration > MaxLease {
		return ErrInvalidLease
	}

	key := timerKey{port: externalPort, proto: protocol}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	// Cancel existing timer if any
	if existing, exists := tr.timers[key]; exists {
		if existing.timer != nil {
			existing.timer.Stop()
		}
	}

	timer := &Timer{
		ExternalPort: externalPort,
		Protocol:     protocol,
		StartTime:    time.Now(),
		Duration:     duration,
	}
	timer.timer = time.AfterFunc(duration, func() {
		tr.expire(key)
	})

	tr.timers[key] = timer
	return nil
}

// Cancel forgets a timer without triggering the expiry callback. Use it
// when a mapping is deleted on purpose.
func (tr *Tracker) Cancel(externalPort int, protocol string) error {
	key := timerKey{port: externalPort, proto: protocol}

	tr.mu.Lock()
	defer tr.mu.Unlock()

	timer, exists := tr.timers[key]
	if !exists {
		return ErrTimerNotFound
	}

	if timer.timer != nil {
		timer.timer.Stop()
	}
	delete(tr.timers, key)
	return nil
}

// CancelAll forgets every timer (e.g. when the gateway goes away).
func (tr *Tracker) CancelAll() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	for key, timer := range tr.timers {
		if timer.timer != nil {
			timer.timer.Stop()
		}
		delete(tr.timers, key)
	}
}

// Get returns the timer for a mapping, or nil if none is tracked.
func (tr *Tracker) Get(externalPort int, protocol string) *Timer {
	key := timerKey{port: externalPort, proto: protocol}

	tr.mu.RLock()
	defer tr.mu.RUnlock()

	if timer, exists := tr.timers[key]; exists {
		// Return a copy to avoid race conditions
		return &Timer{
			ExternalPort: timer.ExternalPort,
			Protocol:     timer.Protocol,
			StartTime:    timer.StartTime,
			Duration:     timer.Duration,
		}
	}
	return nil
}

// Active returns all tracked timers.
func (tr *Tracker) Active() []*Timer {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	var result []*Timer
	for _, timer := range tr.timers {
		result = append(result, &Timer{
			ExternalPort: timer.ExternalPort,
			Protocol:     timer.Protocol,
			StartTime:    timer.StartTime,
			Duration:     timer.Duration,
		})
	}
	return result
}

// Count returns the number of tracked leases.
func (tr *Tracker) Count() int {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return len(tr.timers)
}

// OnExpiry sets the callback for lease expiry. The callback receives the
// mapping's external port and protocol.
func (tr *Tracker) OnExpiry(fn func(externalPort int, protocol string)) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.onExpiry = fn
}

// expire handles a lease running out.
func (tr *Tracker) expire(key timerKey) {
	tr.mu.Lock()

	_, exists := tr.timers[key]
	if !exists {
		tr.mu.Unlock()
		return
	}
	delete(tr.timers, key)

	callback := tr.onExpiry

	tr.mu.Unlock()

	// Call callback outside lock
	if callback != nil {
		callback(key.port, key.proto)
	}
}
