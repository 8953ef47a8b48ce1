package chatline

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrMalformedMessage indicates a message is missing its id or timestamp.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrHistoryUnavailable indicates the remote service could not serve a
	// history page.
	ErrHistoryUnavailable = errors.New("history unavailable")
)
