package dispatch

import "context"

// Loop is a headless UI context: a single goroutine that drains a Bridge
// whenever work arrives. Frontends with their own run loop (see the
// bubbletea package) drain the bridge themselves instead.
type Loop struct {
	bridge *Bridge
}

// NewLoop creates a Loop draining b.
func NewLoop(b *Bridge) *Loop {
	return &Loop{bridge: b}
}

// Run drains the bridge until ctx is done or the bridge is closed. It must be
// called from exactly one goroutine; that goroutine is the UI context.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.bridge.Done():
			return nil
		case <-l.bridge.Ready():
			l.bridge.Drain()
		}
	}
}
