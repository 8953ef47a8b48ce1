package bubbletea

import (
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/channel"
)

// screen is the message list. It adapts the viewport to chatline.Layout in
// units of terminal lines and collects reported errors for the status line.
// It lives on the heap so the channel view can hold it across Model copies.
type screen struct {
	viewport viewport.Model
	view     *channel.View
	styles   Styles
	channel  string

	errTitle  string
	errDetail string
}

func newScreen(styles Styles, channelName string) *screen {
	return &screen{
		viewport: viewport.New(0, 0),
		styles:   styles,
		channel:  channelName,
	}
}

// Extent implements chatline.Layout.
func (s *screen) Extent() float64 { return float64(s.viewport.TotalLineCount()) }

// ViewportHeight implements chatline.Layout.
func (s *screen) ViewportHeight() float64 { return float64(s.viewport.Height) }

// ScrollOffset implements chatline.Layout.
func (s *screen) ScrollOffset() float64 { return float64(s.viewport.YOffset) }

// SetScrollOffset implements chatline.Layout. The viewport clamps to its
// content.
func (s *screen) SetScrollOffset(offset float64) {
	s.viewport.SetYOffset(int(math.Round(offset)))
}

// Report implements chatline.ErrorReporter.
func (s *screen) Report(title, detail string) {
	s.errTitle = title
	s.errDetail = detail
}

func (s *screen) clearError() {
	s.errTitle = ""
	s.errDetail = ""
}

// resize sets the viewport size and re-wraps the content. A list that was
// scrolled to the bottom stays there.
func (s *screen) resize(width, height int) {
	atBottom := s.view != nil && s.view.Anchor().AtBottom()
	s.viewport.Width = width
	s.viewport.Height = height
	s.refresh()
	if atBottom {
		s.viewport.GotoBottom()
	}
}

// refresh re-renders the content and tells the view that layout is done. It
// is the view's OnChange hook.
func (s *screen) refresh() {
	s.viewport.SetContent(s.render())
	if s.view != nil {
		s.view.LayoutComplete()
	}
}

// blocks builds the renderable blocks for the current timeline.
func (s *screen) blocks() []Block {
	if s.view == nil {
		return nil
	}
	tl := s.view.Timeline()
	blocks := make([]Block, 0, tl.Len()+1)
	if s.view.Exhausted() {
		blocks = append(blocks, NewBannerBlock(s.channel, s.styles))
	}
	self := s.view.Self()
	for _, e := range tl.All() {
		blocks = append(blocks, NewEntryBlock(e, self != 0 && e.AuthorID == self, s.styles))
	}
	return blocks
}

func (s *screen) render() string {
	blocks := s.blocks()
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString(blockSeparator(blocks[i-1], block))
		}
		b.WriteString(block.View(s.viewport.Width))
	}
	return b.String()
}

var (
	_ chatline.Layout        = (*screen)(nil)
	_ chatline.ErrorReporter = (*screen)(nil)
)
