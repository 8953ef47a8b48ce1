// Package bubbletea provides a Bubble Tea TUI for a single chat channel.
//
// The Bubble Tea event loop is the UI context: work queued on the dispatch
// bridge by network goroutines is drained from Update, so channel state is
// only ever touched from one goroutine.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatline/dispatch"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled, the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// DispatchMsg tells the model that work is waiting on the bridge.
type DispatchMsg struct{}

// BridgeClosedMsg tells the model that the bridge was closed.
type BridgeClosedMsg struct{}

// waitForDispatch blocks until the bridge has work or is closed.
func waitForDispatch(b *dispatch.Bridge) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.Ready():
			return DispatchMsg{}
		case <-b.Done():
			return BridgeClosedMsg{}
		}
	}
}
