package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatline"
	bt "github.com/fwojciec/chatline/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(chatline.DefaultTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.Author.GetForeground())
	assert.True(t, styles.Author.GetBold())

	assert.Equal(t, lipgloss.Color("2"), styles.Self.GetForeground())
	assert.True(t, styles.Self.GetBold())

	assert.Equal(t, lipgloss.Color("8"), styles.Timestamp.GetForeground())
	assert.True(t, styles.Timestamp.GetFaint())

	assert.Equal(t, lipgloss.Color("3"), styles.Typing.GetForeground())
	assert.True(t, styles.Typing.GetItalic())

	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())
	assert.Equal(t, lipgloss.Color("5"), styles.Accent.GetForeground())
}

func TestNewStyles_NegativeIndexMeansNoColor(t *testing.T) {
	t.Parallel()

	theme := chatline.DefaultTheme()
	theme.Author = -1
	styles := bt.NewStyles(theme)

	assert.Equal(t, lipgloss.NoColor{}, styles.Author.GetForeground())
}
