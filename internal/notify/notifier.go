// Package notify fans an "indexed" event out to every channel a project
// has configured, never letting one channel's failure block another's
// or the caller's state transition.
package notify

import (
	"context"
	"log/slog"

	"github.com/indexpulse/core/internal/domain"
)

// IndexedEvent carries what a notifier needs to describe the event
// without reaching back into the database.
type IndexedEvent struct {
	URL        *domain.URL
	Project    *domain.Project
	OwnerEmail string
}

// Notifier delivers one indexed-notification to one channel. UseCase
// depends on interface, not concrete implementation.
type Notifier interface {
	NotifyIndexed(ctx context.Context, event IndexedEvent) error
}

// Fanout dispatches to every registered notifier and logs failures
// instead of propagating them — a dead webhook endpoint must never
// prevent the URL's state transition from being committed.
type Fanout struct {
	notifiers []Notifier
	logger    *slog.Logger
}

func NewFanout(logger *slog.Logger, notifiers ...Notifier) *Fanout {
	return &Fanout{notifiers: notifiers, logger: logger.With("component", "notify_fanout")}
}

func (f *Fanout) NotifyIndexed(ctx context.Context, event IndexedEvent) {
	for _, n := range f.notifiers {
		if err := n.NotifyIndexed(ctx, event); err != nil {
			f.logger.ErrorContext(ctx, "notifier failed",
				"url_id", event.URL.ID,
				"error", err,
			)
		}
	}
}
