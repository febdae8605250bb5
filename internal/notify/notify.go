// Package notify carries change events out of the stores. Stores emit one
// typed event per mutation; how an event turns into user-facing text is
// decided here, not inside the stores, so persistence stays decoupled from
// presentation feedback.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

const (
	ServiceAdded     Kind = "service:added"
	ServiceUpdated   Kind = "service:updated"
	ServiceDeleted   Kind = "service:deleted"
	ServicesCleared  Kind = "services:cleared"
	ServicesImported Kind = "services:imported"
	CatalogSaved     Kind = "catalog:saved"
	PlanAdded        Kind = "plan:added"
	PlanUpdated      Kind = "plan:updated"
	PlanDeleted      Kind = "plan:deleted"
	CreditUsed       Kind = "plan:credit-used"
	PlanRenewed      Kind = "plan:renewed"
	NoCreditsLeft    Kind = "plan:no-credits"
	SaveFailed       Kind = "save:failed"
)

type (
	// Kind identifies what changed.
	Kind string

	// Event describes one store mutation (or its failure). Subject is the
	// display name of the affected record, when there is one; Count is set
	// for aggregate events like imports.
	Event struct {
		Kind    Kind
		Subject string
		Count   int
	}

	// Notifier receives events from the stores.
	Notifier interface {
		Notify(ctx context.Context, e Event)
	}
)

// Warning reports whether the event should be presented as a warning or
// destructive action rather than a success.
func (e Event) Warning() bool {
	switch e.Kind {
	case ServiceDeleted, ServicesCleared, PlanDeleted, NoCreditsLeft, SaveFailed:
		return true
	default:
		return false
	}
}

// Logger is a Notifier that writes events to structured logs.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Notify(ctx context.Context, e Event) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	title, description := Message(e)
	if e.Warning() {
		log.WarnContext(ctx, title, "kind", string(e.Kind), "subject", e.Subject, "detail", description)
		return
	}
	log.InfoContext(ctx, title, "kind", string(e.Kind), "subject", e.Subject, "detail", description)
}

// Recorder is a Notifier that remembers every event, for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent event, if any.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}
