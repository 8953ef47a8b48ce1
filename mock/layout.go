package mock

// Layout is a test double for chatline.Layout. Unlike the other doubles it
// holds state, since every layout test needs a scroll offset that remembers
// what was set.
type Layout struct {
	ExtentValue float64
	Height      float64
	Offset      float64

	// SetCalls counts SetScrollOffset calls.
	SetCalls int
}

// Extent returns ExtentValue.
func (l *Layout) Extent() float64 { return l.ExtentValue }

// ViewportHeight returns Height.
func (l *Layout) ViewportHeight() float64 { return l.Height }

// ScrollOffset returns Offset.
func (l *Layout) ScrollOffset() float64 { return l.Offset }

// SetScrollOffset stores offset and counts the call.
func (l *Layout) SetScrollOffset(offset float64) {
	l.Offset = offset
	l.SetCalls++
}

// Grow adds h to the extent, as a layout pass would after content is added.
func (l *Layout) Grow(h float64) { l.ExtentValue += h }

// Bottom returns the offset that shows the end of the content.
func (l *Layout) Bottom() float64 { return max(0, l.ExtentValue-l.Height) }
