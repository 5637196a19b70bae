// internal/session/idle.go
package session

import (
	"sync"
	"time"

	"housing-portal/internal/common/logger"
	"housing-portal/internal/common/metrics"
)

// IdleHooks are the callbacks the monitor fires as a session goes stale.
type IdleHooks struct {
	// OnWarn fires when the inactivity threshold elapses, starting the
	// countdown window.
	OnWarn func(remaining time.Duration)
	// OnStay fires when activity or an explicit stay arrives during the
	// countdown; the controller uses it to refresh the token proactively.
	OnStay func()
	// OnTimeout fires exactly once when the countdown reaches zero.
	OnTimeout func()
}

type idleState int

const (
	idleStopped idleState = iota
	idleActive
	idleWarning
)

// IdleMonitor ends sessions left unattended. After the inactivity threshold
// it opens a warning countdown; activity during the countdown keeps the
// session alive, expiry of the countdown forces a logout.
type IdleMonitor struct {
	threshold time.Duration
	countdown time.Duration
	hooks     IdleHooks
	logger    logger.Logger

	mu             sync.Mutex
	state          idleState
	thresholdTimer *time.Timer
	countdownTimer *time.Timer
}

func NewIdleMonitor(threshold, countdown time.Duration, hooks IdleHooks, log logger.Logger) *IdleMonitor {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &IdleMonitor{
		threshold: threshold,
		countdown: countdown,
		hooks:     hooks,
		logger:    log,
	}
}

// Start arms the inactivity timer. Calling Start on a running monitor resets it.
func (m *IdleMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimersLocked()
	m.state = idleActive
	m.armThresholdLocked()
}

// Stop disarms the monitor without firing any callback. Safe to call twice.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelTimersLocked()
	m.state = idleStopped
}

// Activity records user activity. While active it just resets the threshold;
// during the countdown it also cancels the pending logout and triggers the
// stay path.
func (m *IdleMonitor) Activity() {
	m.mu.Lock()
	switch m.state {
	case idleActive:
		m.armThresholdLocked()
		m.mu.Unlock()
	case idleWarning:
		m.cancelTimersLocked()
		m.state = idleActive
		m.armThresholdLocked()
		stay := m.hooks.OnStay
		m.mu.Unlock()
		if stay != nil {
			stay()
		}
	default:
		m.mu.Unlock()
	}
}

// Stay dismisses the warning countdown, equivalent to activity during it.
func (m *IdleMonitor) Stay() {
	m.mu.Lock()
	if m.state != idleWarning {
		m.mu.Unlock()
		return
	}
	m.cancelTimersLocked()
	m.state = idleActive
	m.armThresholdLocked()
	stay := m.hooks.OnStay
	m.mu.Unlock()
	if stay != nil {
		stay()
	}
}

func (m *IdleMonitor) armThresholdLocked() {
	if m.thresholdTimer != nil {
		m.thresholdTimer.Stop()
	}
	m.thresholdTimer = time.AfterFunc(m.threshold, m.warn)
}

func (m *IdleMonitor) warn() {
	m.mu.Lock()
	if m.state != idleActive {
		m.mu.Unlock()
		return
	}
	m.state = idleWarning
	m.countdownTimer = time.AfterFunc(m.countdown, m.timeout)
	warnFn := m.hooks.OnWarn
	remaining := m.countdown
	m.mu.Unlock()

	m.logger.Info("session idle, starting logout countdown", map[string]interface{}{
		"countdown": remaining.String(),
	})
	if warnFn != nil {
		warnFn(remaining)
	}
}

func (m *IdleMonitor) timeout() {
	m.mu.Lock()
	if m.state != idleWarning {
		m.mu.Unlock()
		return
	}
	m.state = idleStopped
	m.cancelTimersLocked()
	timeoutFn := m.hooks.OnTimeout
	m.mu.Unlock()

	m.logger.Info("idle countdown elapsed, ending session", nil)
	metrics.ForcedLogoutsTotal.Inc()
	if timeoutFn != nil {
		timeoutFn()
	}
}

func (m *IdleMonitor) cancelTimersLocked() {
	if m.thresholdTimer != nil {
		m.thresholdTimer.Stop()
		m.thresholdTimer = nil
	}
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
		m.countdownTimer = nil
	}
}
