package trace

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/frameclock"
	"github.com/banshee-data/touchbridge/internal/serialmux"
)

// replayFrameCap bounds the post-release frame loop so a momentum glide
// that never quite stops cannot spin forever.
const replayFrameCap = 4096

// Replay feeds a recorded session through a fresh pipeline on a mock
// clock and returns the visual frames it produces. The frame cadence is
// the default interval; event timestamps drive the clock, so the replay
// reproduces the original gesture timing exactly.
func Replay(store *Store, sessionID uuid.UUID, mapper bridge.Mapper, opts bridge.Options) ([]FrameRecord, error) {
	kinds, events, err := store.SessionEvents(sessionID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("session %s has no events", sessionID)
	}

	base := events[0].Timestamp
	mock := frameclock.NewMockClock(msToTime(base))
	b := bridge.New(mock, mapper, opts)
	defer b.Close()

	interval := frameclock.DefaultFrameInterval
	step := float64(interval) / float64(time.Millisecond)

	var frames []FrameRecord
	cur := base

	capture := func() {
		st := b.State()
		frames = append(frames, FrameRecord{
			TickMs:     cur - base,
			TranslateX: st.Transform.TranslateX,
			TranslateY: st.Transform.TranslateY,
			Scale:      st.Transform.Scale,
			Rotation:   st.Transform.Rotation,
			Opacity:    st.Opacity,
		})
	}

	for i, ev := range events {
		for cur+step <= ev.Timestamp {
			mock.Advance(interval)
			cur += step
			capture()
		}
		if ev.Timestamp > cur {
			mock.Set(msToTime(ev.Timestamp))
			cur = ev.Timestamp
		}
		switch kinds[i] {
		case serialmux.EventTypeDown:
			b.PointerDown(ev)
		case serialmux.EventTypeMove:
			b.PointerMove(ev)
		case serialmux.EventTypeUp:
			b.PointerUp(ev)
		default:
			return nil, fmt.Errorf("unknown event kind %q in session %s", kinds[i], sessionID)
		}
	}

	// Run out remaining scheduled frames so momentum decays to rest.
	for i := 0; mock.Pending() > 0 && i < replayFrameCap; i++ {
		mock.Advance(interval)
		cur += step
		capture()
	}

	return frames, nil
}

func msToTime(ms float64) time.Time {
	return time.Unix(0, int64(ms*float64(time.Millisecond)))
}
