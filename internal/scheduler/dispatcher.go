package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/indexpulse/core/internal/usecase"
)

// PendingDispatcher is the backstop sweep named in §4.5: URLs that never
// made it past `pending` (a crash between Create and MarkSubmitted, or a
// failed EnqueueURL that put the URL back in `pending`) are claimed and
// re-enqueued on a short fixed interval.
type PendingDispatcher struct {
	dispatcher *usecase.SubmissionDispatcher
	logger     *slog.Logger
	interval   time.Duration
	batchSize  int
}

func NewPendingDispatcher(dispatcher *usecase.SubmissionDispatcher, logger *slog.Logger, interval time.Duration, batchSize int) *PendingDispatcher {
	return &PendingDispatcher{
		dispatcher: dispatcher,
		logger:     logger.With("component", "pending_dispatcher"),
		interval:   interval,
		batchSize:  batchSize,
	}
}

func (d *PendingDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("pending dispatcher started", "interval", d.interval)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("pending dispatcher shut down")
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *PendingDispatcher) dispatch(ctx context.Context) {
	n, err := d.dispatcher.DispatchPendingBatch(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("dispatch pending batch failed", "error", err)
		return
	}
	if n > 0 {
		d.logger.Info("dispatched pending urls", "count", n)
	}
}
