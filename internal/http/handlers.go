package http

import (
	"context"
	"net/http"

	"flowbarber/internal/notify"
)

// captureEvents runs fn with a request-scoped event recorder and returns
// every event the store calls emitted.
func captureEvents(ctx context.Context, fn func(ctx context.Context)) []notify.Event {
	rec := &notify.Recorder{}
	fn(notify.WithRecorder(ctx, rec))
	return rec.Events()
}

// respondMutation writes the standard mutation response: the refreshed data
// plus the toast for what the store announced. A plan purchase or renewal
// can emit a second event for its companion revenue entry; the primary
// mutation's event wins unless something failed. A failed persist maps to
// 500, an out-of-credits guard to 409.
func respondMutation(w http.ResponseWriter, data any, events []notify.Event) {
	b := NewResponse().Data(data)
	for _, e := range events {
		switch e.Kind {
		case notify.SaveFailed:
			b.Notification(e).Status(http.StatusInternalServerError).Write(w)
			return
		case notify.NoCreditsLeft:
			b.Notification(e).Status(http.StatusConflict).Write(w)
			return
		}
	}
	if len(events) > 0 {
		b.Notification(events[0])
	}
	b.Write(w)
}
