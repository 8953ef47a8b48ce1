// Package mock provides test doubles for chatline interfaces using function fields.
package mock

import (
	"context"
	"time"

	"github.com/fwojciec/chatline"
)

// Interface compliance checks.
var (
	_ chatline.Client        = (*Client)(nil)
	_ chatline.Layout        = (*Layout)(nil)
	_ chatline.ErrorReporter = (*ErrorReporter)(nil)
)

// Client is a test double for chatline.Client.
// Set the function fields for the methods you need.
type Client struct {
	FetchHistoryFn func(ctx context.Context, channel chatline.ChannelID, before time.Time, count int) ([]chatline.Message, error)
	SendMessageFn  func(ctx context.Context, channel chatline.ChannelID, content string, attachments []chatline.AttachmentRef) (chatline.Message, error)
	SubscribeFn    func(ctx context.Context, handler func(chatline.Event)) error
}

// FetchHistory delegates to FetchHistoryFn.
func (c *Client) FetchHistory(ctx context.Context, channel chatline.ChannelID, before time.Time, count int) ([]chatline.Message, error) {
	return c.FetchHistoryFn(ctx, channel, before, count)
}

// SendMessage delegates to SendMessageFn.
func (c *Client) SendMessage(ctx context.Context, channel chatline.ChannelID, content string, attachments []chatline.AttachmentRef) (chatline.Message, error) {
	return c.SendMessageFn(ctx, channel, content, attachments)
}

// Subscribe delegates to SubscribeFn.
func (c *Client) Subscribe(ctx context.Context, handler func(chatline.Event)) error {
	return c.SubscribeFn(ctx, handler)
}

// ErrorReporter is a test double for chatline.ErrorReporter.
type ErrorReporter struct {
	ReportFn func(title, detail string)
}

// Report delegates to ReportFn.
func (r *ErrorReporter) Report(title, detail string) {
	r.ReportFn(title, detail)
}
