package serialmux

import (
	"context"
	"sync/atomic"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/frameclock"
	"github.com/banshee-data/touchbridge/internal/monitoring"
)

// PointerSink consumes parsed pointer events. *bridge.Bridge satisfies
// this directly.
type PointerSink interface {
	PointerDown(bridge.PointerEvent)
	PointerMove(bridge.PointerEvent)
	PointerUp(bridge.PointerEvent)
}

// PumpStats counts frames seen by a Pump. Fields are updated atomically
// and may be read while the pump runs.
type PumpStats struct {
	Frames    atomic.Int64 // Parsed pointer frames dispatched
	Malformed atomic.Int64 // Lines that failed to parse
	Status    atomic.Int64 // Device status lines (ignored)
}

// Pump subscribes to the mux and dispatches parsed pointer frames to the
// sink until the context is cancelled or the subscription closes.
//
// Device timestamps are uptime millis; the pump rebases them onto the
// clock's epoch using the offset observed on the first frame, so sample
// timestamps and the bridge's latency measurements share a base.
// Malformed lines are counted and skipped, never fatal.
func Pump(ctx context.Context, mux SerialMuxInterface, sink PointerSink, clock frameclock.Clock, stats *PumpStats) {
	id, lines := mux.Subscribe()
	defer mux.Unsubscribe(id)

	rebased := false
	var offset float64

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			if ClassifyLine(line) == EventTypeStatus {
				if stats != nil {
					stats.Status.Add(1)
				}
				monitoring.Debugf("serialmux: device status: %s", line)
				continue
			}

			kind, ev, err := ParsePointerLine(line)
			if err != nil {
				if stats != nil {
					stats.Malformed.Add(1)
				}
				monitoring.Debugf("serialmux: skipping line: %v", err)
				continue
			}

			if !rebased {
				offset = float64(clock.Now().UnixNano())/1e6 - ev.Timestamp
				rebased = true
			}
			ev.Timestamp += offset

			switch kind {
			case EventTypeDown:
				sink.PointerDown(ev)
			case EventTypeMove:
				sink.PointerMove(ev)
			case EventTypeUp:
				sink.PointerUp(ev)
			}
			if stats != nil {
				stats.Frames.Add(1)
			}
		}
	}
}
