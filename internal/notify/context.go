package notify

import "context"

type recorderKey struct{}

// WithRecorder returns a context carrying rec. Events dispatched through a
// Fanout built over that context land in rec, letting a request handler
// collect what its store calls announced.
func WithRecorder(ctx context.Context, rec *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

// RecorderFrom returns the recorder carried by ctx, if any.
func RecorderFrom(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}

// Fanout forwards each event to the context's recorder, when present, and
// always to Fallback. Stores are constructed once with a Fanout so both the
// log and the current request see every event.
type Fanout struct {
	Fallback Notifier
}

func (f Fanout) Notify(ctx context.Context, e Event) {
	if rec := RecorderFrom(ctx); rec != nil {
		rec.Notify(ctx, e)
	}
	if f.Fallback != nil {
		f.Fallback.Notify(ctx, e)
	}
}
