package audit

import (
	"context"
	"log/slog"
)

// Worker consumes events from a trail and persists them. Persistence errors
// are logged and the event dropped; the trail must never take the API down.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, &event); err != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"collection", event.Collection, "action", event.Action, "error", err)
			}
		}
	}
}
