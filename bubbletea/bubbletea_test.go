package bubbletea_test

import (
	"context"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatline"
	bt "github.com/fwojciec/chatline/bubbletea"
	"github.com/fwojciec/chatline/channel"
	"github.com/fwojciec/chatline/dispatch"
	"github.com/fwojciec/chatline/eventbus"
	"github.com/fwojciec/chatline/mock"
	"github.com/stretchr/testify/require"
)

const chanID chatline.ChannelID = 7

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// msg alternates authors so that every entry carries a header.
func msg(id int) chatline.Message {
	author, name := chatline.UserID(1), "alice"
	if id%2 == 0 {
		author, name = 2, "bob"
	}
	return chatline.Message{
		ID:         chatline.MessageID(id),
		ChannelID:  chanID,
		AuthorID:   author,
		AuthorName: name,
		CreatedAt:  base.Add(time.Duration(id) * time.Second),
		Content:    "message",
	}
}

// history serves n messages the way a server would: the newest count
// strictly before the cursor, oldest first.
func history(n int) func(context.Context, chatline.ChannelID, time.Time, int) ([]chatline.Message, error) {
	var all []chatline.Message
	for i := 1; i <= n; i++ {
		all = append(all, msg(i))
	}
	return func(_ context.Context, _ chatline.ChannelID, before time.Time, count int) ([]chatline.Message, error) {
		end := len(all)
		if !before.IsZero() {
			end = slices.IndexFunc(all, func(m chatline.Message) bool { return !m.CreatedAt.Before(before) })
			if end < 0 {
				end = len(all)
			}
		}
		start := max(0, end-count)
		return slices.Clone(all[start:end]), nil
	}
}

// fixture is a model wired to a bus and bridge, without a running program.
type fixture struct {
	bus    *eventbus.Bus
	bridge *dispatch.Bridge
	remote *mock.Client
}

func newFixture(remote *mock.Client) *fixture {
	bus := eventbus.New()
	return &fixture{bus: bus, bridge: dispatch.New(bus), remote: remote}
}

func (f *fixture) config() bt.Config {
	return bt.Config{
		Bridge: f.bridge,
		View: channel.Config{
			Channel: chanID,
			Remote:  f.remote,
			Bus:     f.bus,
			Self:    2,
		},
		ChannelName: "general",
		Theme:       chatline.DefaultTheme(),
	}
}

// initModel creates a model and sends a WindowSizeMsg to open the view.
func initModel(t *testing.T, f *fixture, width, height int) bt.Model {
	t.Helper()
	return initModelWith(t, f.config(), width, height)
}

func initModelWith(t *testing.T, cfg bt.Config, width, height int) bt.Model {
	t.Helper()
	m := bt.New(cfg)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// settle drains the bridge through the model, as the program loop would,
// until cond holds.
func settle(t *testing.T, f *fixture, m bt.Model, cond func(bt.Model) bool) bt.Model {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond(m) {
		select {
		case <-f.bridge.Ready():
			m = updateModel(t, m, bt.DispatchMsg{})
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
	return m
}
