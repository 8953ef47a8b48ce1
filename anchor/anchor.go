// Package anchor keeps the visible part of a timeline still while content is
// added above it, and pins the view to the bottom when new content arrives
// while the user is already there.
//
// The protocol has two halves. BeforeMutation runs synchronously before the
// timeline changes and records an Intent from the current scroll state.
// LayoutComplete runs after the rendering layer has measured the new content
// and applies the correction. Nothing else moves the scroll offset.
package anchor

import (
	"fmt"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/rs/zerolog"
)

// DefaultEpsilon treats anything within one line of the bottom as "at the
// bottom" for a line-based layout.
const DefaultEpsilon = 1.0

// Mode is the anchor's persistent state.
type Mode int

const (
	// ModeIdle applies the normal heuristics.
	ModeIdle Mode = iota
	// ModePendingAppendPin forces the next append to pin to the bottom. It
	// is entered when the user sends a message.
	ModePendingAppendPin
	// ModeSmoothFollow pins to the bottom on every layout pass. It is
	// toggled by the UI around reveal animations.
	ModeSmoothFollow
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePendingAppendPin:
		return "pending-append-pin"
	case ModeSmoothFollow:
		return "smooth-follow"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// IntentKind says how the next layout pass corrects the scroll offset.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentFollowBottom
	IntentAnchorTop
)

// Intent is the transient correction recorded before a mutation.
type Intent struct {
	Kind      IntentKind
	PreExtent float64
	PreOffset float64
	// Forced is set when a pending send pin produced the intent.
	Forced bool
}

// Anchor is owned by the UI context and is not safe for concurrent use.
type Anchor struct {
	layout  chatline.Layout
	epsilon float64
	logger  zerolog.Logger

	pendingPin bool
	smooth     bool
	intent     Intent
	lastExtent float64
}

// Option configures an Anchor.
type Option func(*Anchor)

// WithEpsilon sets the at-bottom tolerance in layout units.
func WithEpsilon(eps float64) Option {
	return func(a *Anchor) {
		if eps >= 0 {
			a.epsilon = eps
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Anchor) {
		a.logger = logging.Component(l, "anchor")
	}
}

// New creates an Anchor over layout.
func New(layout chatline.Layout, opts ...Option) *Anchor {
	a := &Anchor{
		layout:  layout,
		epsilon: DefaultEpsilon,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.lastExtent = layout.Extent()
	return a
}

// Mode returns the current mode. Smooth follow takes precedence over a
// pending pin.
func (a *Anchor) Mode() Mode {
	switch {
	case a.smooth:
		return ModeSmoothFollow
	case a.pendingPin:
		return ModePendingAppendPin
	default:
		return ModeIdle
	}
}

// Intent returns the intent recorded for the next layout pass.
func (a *Anchor) Intent() Intent { return a.intent }

// AtBottom reports whether the scroll offset is within epsilon of the bottom.
// Content shorter than the viewport is always at the bottom.
func (a *Anchor) AtBottom() bool {
	bottom := a.layout.Extent() - a.layout.ViewportHeight()
	return a.layout.ScrollOffset() >= bottom-a.epsilon
}

// BeforeMutation records how to correct the scroll offset once the timeline
// has changed in direction dir and the layout has been measured.
func (a *Anchor) BeforeMutation(dir chatline.Direction) {
	pre := Intent{
		PreExtent: a.layout.Extent(),
		PreOffset: a.layout.ScrollOffset(),
	}
	switch dir {
	case chatline.Append:
		switch {
		case a.pendingPin:
			pre.Kind = IntentFollowBottom
			pre.Forced = true
		case a.AtBottom():
			pre.Kind = IntentFollowBottom
		}
	case chatline.Prepend:
		pre.Kind = IntentAnchorTop
	}
	a.intent = pre
	a.logger.Debug().
		Stringer("direction", dir).
		Int("intent", int(pre.Kind)).
		Float64("extent", pre.PreExtent).
		Float64("offset", pre.PreOffset).
		Msg("before mutation")
}

// Discard drops the recorded intent without moving the scroll offset, for a
// mutation that turned out not to change anything. A pending send pin stays
// armed.
func (a *Anchor) Discard() {
	a.intent = Intent{}
}

// LayoutComplete applies the recorded intent using the freshly measured
// extent, then clears it. In smooth follow mode every extent change pins to
// the bottom.
func (a *Anchor) LayoutComplete() {
	post := a.layout.Extent()
	changed := post != a.lastExtent
	a.lastExtent = post
	intent := a.intent
	a.intent = Intent{}

	if intent.Forced {
		a.pendingPin = false
	}

	switch {
	case a.smooth && (changed || intent.Kind != IntentNone):
		a.pinBottom()
	case intent.Kind == IntentFollowBottom:
		a.pinBottom()
	case intent.Kind == IntentAnchorTop:
		delta := post - intent.PreExtent
		if delta != 0 {
			a.layout.SetScrollOffset(intent.PreOffset + delta)
		}
	}
}

func (a *Anchor) pinBottom() {
	a.layout.SetScrollOffset(max(0, a.layout.Extent()-a.layout.ViewportHeight()))
}

// PrepareSend arms the pin for the next append: the user's own message is
// always brought into view, even if they had scrolled up.
func (a *Anchor) PrepareSend() {
	a.pendingPin = true
}

// SendFailed disarms a pending pin without moving the scroll offset.
func (a *Anchor) SendFailed() {
	a.pendingPin = false
}

// SetSmoothFollow turns smooth follow on or off. Turning it on pins to the
// bottom immediately.
func (a *Anchor) SetSmoothFollow(on bool) {
	a.smooth = on
	if on {
		a.pinBottom()
	}
}
