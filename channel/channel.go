// Package channel wires the timeline, pagination, anchoring and typing
// presence of one channel into a single view that lives on the UI context.
package channel

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/anchor"
	"github.com/fwojciec/chatline/eventbus"
	"github.com/fwojciec/chatline/logging"
	"github.com/fwojciec/chatline/pagination"
	"github.com/fwojciec/chatline/timeline"
	"github.com/fwojciec/chatline/typing"
	"github.com/rs/zerolog"
)

// Remote is the part of the network client a view needs.
type Remote interface {
	chatline.HistoryFetcher
	chatline.Sender
}

// Config holds everything a View needs. Zero values select defaults.
type Config struct {
	Channel chatline.ChannelID
	Remote  Remote
	Bus     *eventbus.Bus
	Layout  chatline.Layout

	// Post schedules a closure on the UI context and reports false once the
	// UI context is gone.
	Post func(func()) bool
	// After schedules a closure on the UI context after a delay.
	After func(time.Duration, func())

	Reporter chatline.ErrorReporter
	Context  context.Context
	Logger   zerolog.Logger

	Self            chatline.UserID
	InitialBatch    int
	MoreBatch       int
	PrefetchScreens float64
	Epsilon         float64
	TypingTimeout   time.Duration
}

// View is the owner of one channel's state. Every method must be called on
// the UI context.
type View struct {
	eventbus.NopReceiver

	channel  chatline.ChannelID
	remote   Remote
	bus      *eventbus.Bus
	layout   chatline.Layout
	post     func(func()) bool
	reporter chatline.ErrorReporter
	ctx      context.Context
	logger   zerolog.Logger

	moreBatch int
	screens   float64

	timeline *timeline.Timeline
	pager    *pagination.Controller
	anchor   *anchor.Anchor
	typing   *typing.Tracker

	self   chatline.UserID
	names  map[chatline.UserID]string
	subID  string
	closed bool

	// OnChange is called after anything visible changed.
	OnChange func()
}

// New creates a View. Call Open to start receiving events.
func New(cfg Config) *View {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = chatline.ErrorReporterFunc(func(string, string) {})
	}
	moreBatch := cfg.MoreBatch
	if moreBatch <= 0 {
		moreBatch = pagination.DefaultMoreBatch
	}
	screens := cfg.PrefetchScreens
	if screens <= 0 {
		screens = pagination.DefaultPrefetchScreen
	}
	logger := cfg.Logger.With().Str("channel", cfg.Channel.String()).Logger()

	v := &View{
		channel:   cfg.Channel,
		remote:    cfg.Remote,
		bus:       cfg.Bus,
		layout:    cfg.Layout,
		post:      cfg.Post,
		reporter:  reporter,
		ctx:       ctx,
		logger:    logging.Component(logger, "channel"),
		moreBatch: moreBatch,
		screens:   screens,
		self:      cfg.Self,
		names:     make(map[chatline.UserID]string),
	}

	v.timeline = timeline.New(timeline.WithLogger(logger))

	anchorOpts := []anchor.Option{anchor.WithLogger(logger)}
	if cfg.Epsilon > 0 {
		anchorOpts = append(anchorOpts, anchor.WithEpsilon(cfg.Epsilon))
	}
	v.anchor = anchor.New(cfg.Layout, anchorOpts...)

	v.pager = pagination.New(cfg.Channel, cfg.Remote, v.timeline, cfg.Post,
		pagination.WithInitialBatch(cfg.InitialBatch),
		pagination.WithReporter(reporter),
		pagination.WithContext(ctx),
		pagination.WithLogger(logger),
		pagination.WithHooks(pagination.Hooks{
			BeforeInsert: v.anchor.BeforeMutation,
			AfterInsert:  v.afterPage,
		}),
	)

	v.typing = typing.New(cfg.Channel, cfg.Bus, cfg.After,
		typing.WithSelf(cfg.Self),
		typing.WithTimeout(cfg.TypingTimeout),
		typing.WithLogger(logger),
	)
	return v
}

// Channel returns the channel id.
func (v *View) Channel() chatline.ChannelID { return v.channel }

// Timeline returns the view's timeline. Callers must not mutate it.
func (v *View) Timeline() *timeline.Timeline { return v.timeline }

// Anchor returns the view's anchor, for the rendering layer to drive smooth
// follow.
func (v *View) Anchor() *anchor.Anchor { return v.anchor }

// Loading reports whether a history page is in flight.
func (v *View) Loading() bool { return v.pager.State() == pagination.Loading }

// Exhausted reports whether the oldest history has been reached.
func (v *View) Exhausted() bool { return v.pager.Exhausted() }

// Self returns the local user, or zero if not yet known.
func (v *View) Self() chatline.UserID { return v.self }

// Typing returns the display names of users typing in this channel.
func (v *View) Typing() []string {
	ids := v.typing.Typing()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, v.Name(id))
	}
	return names
}

// Name returns the best known display name for user.
func (v *View) Name(user chatline.UserID) string {
	if name, ok := v.names[user]; ok {
		return name
	}
	for i := v.timeline.Len() - 1; i >= 0; i-- {
		e := v.timeline.At(i)
		if e.AuthorID == user && e.AuthorName != "" {
			v.names[user] = e.AuthorName
			return e.AuthorName
		}
	}
	return "user " + user.String()
}

// Open subscribes the view to the bus and requests the first page of
// history.
func (v *View) Open() {
	if v.subID != "" || v.closed {
		return
	}
	v.subID = v.bus.Subscribe(v)
	if v.pager.LoadInitial() {
		v.changed()
	}
}

// Close tears the view down. Results still in flight are dropped when they
// arrive.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.subID != "" {
		v.bus.Unsubscribe(v.subID)
	}
	v.pager.Close()
	v.typing.Close()
	v.logger.Debug().Msg("view closed")
}

// Closed reports whether Close was called.
func (v *View) Closed() bool { return v.closed }

// Scrolled is called by the rendering layer whenever the scroll offset
// changes. Near the oldest loaded content it requests an older page. An open
// view whose first page failed retries it.
func (v *View) Scrolled() bool {
	if v.closed || v.subID == "" {
		return false
	}
	if v.timeline.Len() == 0 {
		if v.pager.Exhausted() || !v.pager.LoadInitial() {
			return false
		}
		v.changed()
		return true
	}
	if !pagination.NearOldest(v.layout.ScrollOffset(), v.layout.ViewportHeight(), v.screens) {
		return false
	}
	if !v.pager.LoadMore(v.moreBatch) {
		return false
	}
	v.changed()
	return true
}

// LayoutComplete is called by the rendering layer after it measured the
// content.
func (v *View) LayoutComplete() {
	v.anchor.LayoutComplete()
}

// Send posts a message. The view pins to the bottom when the message lands.
// It reports whether a send was started.
func (v *View) Send(content string, attachments []chatline.AttachmentRef) bool {
	if v.closed {
		return false
	}
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return false
	}
	v.anchor.PrepareSend()
	log := v.logger.With().Int("length", len(content)).Int("attachments", len(attachments)).Logger()
	log.Debug().Msg("sending message")

	go func() {
		m, err := v.remote.SendMessage(v.ctx, v.channel, content, attachments)
		if !v.post(func() { v.sent(m, err, log) }) {
			log.Debug().Msg("send result dropped: ui closed")
		}
	}()
	return true
}

func (v *View) sent(m chatline.Message, err error, log zerolog.Logger) {
	if v.closed {
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("send failed")
		v.anchor.SendFailed()
		v.reporter.Report("Failure sending message", err.Error())
		v.changed()
		return
	}
	log.Debug().Stringer("id", m.ID).Msg("message sent")
	if !v.insertLive(m) && !v.timeline.Contains(m.ID) {
		log.Debug().Stringer("id", m.ID).Msg("sent message rejected by timeline")
		v.anchor.SendFailed()
	}
}

// afterPage runs after the pager inserted a page.
func (v *View) afterPage(_ chatline.Direction, inserted int) {
	if inserted == 0 {
		v.anchor.Discard()
	}
	v.changed()
}

// insertLive adds a live message and reports whether the timeline took it.
func (v *View) insertLive(m chatline.Message) bool {
	v.typing.OnMessageSentBy(m.AuthorID)
	if m.AuthorName != "" {
		v.names[m.AuthorID] = m.AuthorName
	}
	v.anchor.BeforeMutation(chatline.Append)
	if v.timeline.InsertBatch([]chatline.Message{m}, chatline.Append) == 0 {
		v.anchor.Discard()
		return false
	}
	v.changed()
	return true
}

func (v *View) changed() {
	if v.OnChange != nil {
		v.OnChange()
	}
}

// OnReady records the local user.
func (v *View) OnReady(e chatline.EventReady) {
	v.self = e.Self
	v.typing.SetSelf(e.Self)
}

// OnMessageCreated inserts a live message.
func (v *View) OnMessageCreated(e chatline.EventMessageCreated) {
	if v.closed || e.Message.ChannelID != v.channel {
		return
	}
	v.insertLive(e.Message)
}

// OnMessageEdited updates an existing entry.
func (v *View) OnMessageEdited(e chatline.EventMessageEdited) {
	if v.closed || e.Message.ChannelID != v.channel {
		return
	}
	if v.timeline.Edit(e.Message) {
		v.changed()
	}
}

// OnMessageDeleted removes an entry.
func (v *View) OnMessageDeleted(e chatline.EventMessageDeleted) {
	if v.closed || e.ChannelID != v.channel {
		return
	}
	if v.timeline.Remove(e.ID) {
		v.changed()
	}
}

// OnTypingStarted records a typing user.
func (v *View) OnTypingStarted(e chatline.EventTypingStarted) {
	if v.closed || e.ChannelID != v.channel {
		return
	}
	v.typing.OnTyping(e.UserID, e.At)
}

// OnPresenceChanged re-renders the typing line.
func (v *View) OnPresenceChanged(e chatline.EventPresenceChanged) {
	if v.closed || e.ChannelID != v.channel {
		return
	}
	v.changed()
}

var _ eventbus.Receiver = (*View)(nil)
