package chatline

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Author    int // Author name in a message header
	SelfName  int // Author name when the author is the local user
	Timestamp int // Header timestamp
	Edited    int // "(edited)" marker
	Typing    int // Typing presence line
	Error     int // Error messages
	Muted     int // Status bar, placeholders
	Accent    int // Spinner, attachment names
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Author:    4,
		SelfName:  2,
		Timestamp: 8,
		Edited:    8,
		Typing:    3,
		Error:     1,
		Muted:     8,
		Accent:    5,
	}
}
