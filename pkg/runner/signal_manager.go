package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalManager turns SIGINT/SIGTERM into context cancellation.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals on top of parent.
func NewSignalManager(parent context.Context) *SignalManager {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &SignalManager{ctx: ctx, cancel: cancel}
}

// Context is cancelled on the first signal or when the parent is done.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Stop releases the signal subscription.
func (sm *SignalManager) Stop() {
	sm.cancel()
}

// Interrupted waits briefly for a signal that may trail an input error.
// Some terminals deliver Ctrl+C as an EOF slightly before the signal itself.
func (sm *SignalManager) Interrupted() bool {
	if sm.ctx.Err() != nil {
		return true
	}
	select {
	case <-sm.ctx.Done():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}
