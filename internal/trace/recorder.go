package trace

import (
	"sync/atomic"
	"time"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/monitoring"
	"github.com/banshee-data/touchbridge/internal/serialmux"
)

// Recorder tees pointer events to an inner sink while persisting them
// under a trace session. Storage failures are logged, never allowed to
// stall the live pointer path.
type Recorder struct {
	store   *Store
	sink    serialmux.PointerSink
	session Session
	seq     atomic.Int64
}

// NewRecorder begins a new session and returns a sink that records into
// it while forwarding every event to sink.
func NewRecorder(store *Store, sink serialmux.PointerSink, name string, startedAt time.Time) (*Recorder, error) {
	session, err := store.BeginSession(name, startedAt)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, sink: sink, session: session}, nil
}

// Session returns the session this recorder writes into.
func (r *Recorder) Session() Session { return r.session }

func (r *Recorder) PointerDown(ev bridge.PointerEvent) {
	r.sink.PointerDown(ev)
	r.record(serialmux.EventTypeDown, ev)
}

func (r *Recorder) PointerMove(ev bridge.PointerEvent) {
	r.sink.PointerMove(ev)
	r.record(serialmux.EventTypeMove, ev)
}

func (r *Recorder) PointerUp(ev bridge.PointerEvent) {
	r.sink.PointerUp(ev)
	r.record(serialmux.EventTypeUp, ev)
}

func (r *Recorder) record(kind string, ev bridge.PointerEvent) {
	seq := r.seq.Add(1)
	if err := r.store.RecordEvent(r.session.ID, seq, kind, ev); err != nil {
		monitoring.Logf("trace: failed to record %s event: %v", kind, err)
	}
}

// RecordFrame stores one frame snapshot under the recorder's session.
func (r *Recorder) RecordFrame(f FrameRecord) {
	if err := r.store.RecordFrame(r.session.ID, f); err != nil {
		monitoring.Logf("trace: failed to record frame: %v", err)
	}
}

// Close marks the session finished.
func (r *Recorder) Close(endedAt time.Time) error {
	return r.store.EndSession(r.session.ID, endedAt)
}
