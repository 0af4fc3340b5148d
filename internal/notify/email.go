package notify

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/email"
)

// Email notifies the project owner via the same email.Sender the auth
// flow uses for magic links.
type Email struct {
	sender email.Sender
}

func NewEmail(sender email.Sender) *Email {
	return &Email{sender: sender}
}

func (e *Email) NotifyIndexed(ctx context.Context, event IndexedEvent) error {
	if !event.Project.NotifyByEmail || event.OwnerEmail == "" {
		return nil
	}

	subject := "Your URL is now indexed"
	body := fmt.Sprintf(`<p>Good news — <a href="%s">%s</a> is now indexed.</p>`, event.URL.Text, event.URL.Text)
	if err := e.sender.Send(ctx, event.OwnerEmail, subject, body); err != nil {
		return fmt.Errorf("send indexed notification: %w", err)
	}
	return nil
}
