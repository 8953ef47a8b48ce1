package bubbletea

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/anchor"
	"github.com/fwojciec/chatline/channel"
	"github.com/fwojciec/chatline/dispatch"
	"github.com/fwojciec/chatline/logging"
	"github.com/fwojciec/chatline/typing"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultLoadInterval is the minimum time between scroll-triggered history
// checks.
const DefaultLoadInterval = 250 * time.Millisecond

// wheelLines is how far one mouse wheel notch scrolls.
const wheelLines = 3

// chromeHeight is the number of terminal lines outside the message list:
// the title, the status line and the input.
const chromeHeight = 3

var _ tea.Model = Model{}

// Config holds everything New needs.
type Config struct {
	// Bridge is drained by the model; its Post and After back the view.
	Bridge *dispatch.Bridge
	// View configures the channel view. Layout, Reporter and Logger are set
	// by New; Post and After default to the bridge's.
	View        channel.Config
	ChannelName string
	Theme       chatline.Theme
	Keys        *KeyMap
	// LoadInterval throttles scroll-triggered history loads.
	LoadInterval time.Duration
	Logger       zerolog.Logger
}

// scrollCheckMsg re-runs a scroll check that the throttle deferred.
type scrollCheckMsg struct{}

// Model is the Bubble Tea model for one channel.
type Model struct {
	// Input is the message composer. Exported for test access.
	Input textinput.Model

	spinner  spinner.Model
	keys     KeyMap
	styles   Styles
	bridge   *dispatch.Bridge
	screen   *screen
	view     *channel.View
	logger   zerolog.Logger
	limiter  *rate.Limiter
	interval time.Duration

	channelName  string
	checkPending bool
	spinning     bool
	ready        bool
}

// New creates a Model and the channel view it drives. The view is opened on
// the first window size message, once the list has a height.
func New(cfg Config) Model {
	styles := NewStyles(cfg.Theme)
	scr := newScreen(styles, cfg.ChannelName)

	vc := cfg.View
	vc.Layout = scr
	vc.Reporter = scr
	vc.Logger = cfg.Logger
	if vc.Post == nil {
		vc.Post = cfg.Bridge.Post
	}
	if vc.After == nil {
		vc.After = cfg.Bridge.After
	}
	view := channel.New(vc)
	view.OnChange = scr.refresh
	scr.view = view

	interval := cfg.LoadInterval
	if interval <= 0 {
		interval = DefaultLoadInterval
	}
	keys := DefaultKeyMap()
	if cfg.Keys != nil {
		keys = *cfg.Keys
	}

	ti := textinput.New()
	ti.Placeholder = "Message #" + cfg.ChannelName
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Accent

	return Model{
		Input:       ti,
		spinner:     sp,
		keys:        keys,
		styles:      styles,
		bridge:      cfg.Bridge,
		screen:      scr,
		view:        view,
		logger:      logging.Component(cfg.Logger, "tui"),
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		interval:    interval,
		channelName: cfg.ChannelName,
	}
}

// Channel returns the channel view the model drives.
func (m Model) Channel() *channel.View { return m.view }

// Following reports whether smooth follow is on.
func (m Model) Following() bool {
	return m.view.Anchor().Mode() == anchor.ModeSmoothFollow
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForDispatch(m.bridge))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case DispatchMsg:
		m.bridge.Drain()
		cmd := m.startSpinner()
		return m, tea.Batch(waitForDispatch(m.bridge), cmd)

	case BridgeClosedMsg:
		m.view.Close()
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.view.Loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scrollCheckMsg:
		m.checkPending = false
		cmd := m.scrolled()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			cmd := m.scrollBy(-wheelLines)
			return m, cmd
		case tea.MouseButtonWheelDown:
			cmd := m.scrollBy(wheelLines)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	b.WriteString(m.screen.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	height := max(msg.Height-chromeHeight, 1)
	m.screen.resize(msg.Width, height)
	m.Input.Width = max(msg.Width-runewidth.StringWidth(m.Input.Prompt)-1, 1)

	if m.ready {
		return m, nil
	}
	m.ready = true
	m.logger.Debug().Int("width", msg.Width).Int("height", height).Msg("ui ready")
	m.view.Open()
	cmd := m.startSpinner()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.screen.viewport

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.view.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		if m.view.Send(m.Input.Value(), nil) {
			m.Input.SetValue("")
			m.screen.clearError()
		}
		return m, nil

	case key.Matches(msg, m.keys.Follow):
		m.view.Anchor().SetSmoothFollow(!m.Following())
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		m.screen.clearError()
		return m, nil

	case key.Matches(msg, m.keys.LineUp):
		cmd := m.scrollBy(-1)
		return m, cmd
	case key.Matches(msg, m.keys.LineDown):
		cmd := m.scrollBy(1)
		return m, cmd
	case key.Matches(msg, m.keys.PageUp):
		cmd := m.scrollBy(-vp.Height)
		return m, cmd
	case key.Matches(msg, m.keys.PageDown):
		cmd := m.scrollBy(vp.Height)
		return m, cmd
	case key.Matches(msg, m.keys.HalfPageUp):
		cmd := m.scrollBy(-max(vp.Height/2, 1))
		return m, cmd
	case key.Matches(msg, m.keys.HalfPageDown):
		cmd := m.scrollBy(max(vp.Height/2, 1))
		return m, cmd
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		cmd := m.scrolled()
		return m, cmd
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		cmd := m.scrolled()
		return m, cmd
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// scrollBy moves the list by delta lines and runs the scroll check. The
// check runs even when the offset is clamped, so scrolling up at the top of
// a short list still asks for older history.
func (m *Model) scrollBy(delta int) tea.Cmd {
	vp := &m.screen.viewport
	vp.SetYOffset(vp.YOffset + delta)
	return m.scrolled()
}

// scrolled tells the view the offset changed, at most once per interval.
// A check that falls inside the interval is deferred, not dropped.
func (m *Model) scrolled() tea.Cmd {
	if !m.limiter.Allow() {
		if m.checkPending {
			return nil
		}
		m.checkPending = true
		return tea.Tick(m.interval, func(time.Time) tea.Msg { return scrollCheckMsg{} })
	}
	if m.view.Scrolled() {
		return m.startSpinner()
	}
	return nil
}

// startSpinner starts the loading spinner if a page is in flight and the
// spinner is not already ticking.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.view.Loading() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m Model) titleLine() string {
	title := m.styles.Accent.Render("#" + m.channelName)
	if m.Following() {
		title += " " + m.styles.Muted.Render("(following)")
	}
	return title
}

func (m Model) statusLine() string {
	width := m.screen.viewport.Width
	if m.screen.errTitle != "" {
		text := m.screen.errTitle
		if m.screen.errDetail != "" {
			text += ": " + m.screen.errDetail
		}
		return m.styles.Error.Render(truncate(text, width))
	}
	if m.view.Loading() {
		return m.spinner.View() + " " + m.styles.Muted.Render("Loading history...")
	}
	if text := typing.Describe(m.view.Typing()); text != "" {
		return m.styles.Typing.Render(truncate(text, width))
	}
	return m.styles.Muted.Render(truncate("Enter to send, PgUp for history, Ctrl+T follow, Ctrl+C to quit", width))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(strings.ReplaceAll(s, "\n", " "), width, "…")
}
