package serialmux

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/frameclock"
)

func TestSerialMux_FansOutLines(t *testing.T) {
	port := NewTestableSerialPort("100,down,1:1:1:1\n116,move,1:5:5:1\n")
	mux := NewSerialMux(port)

	_, ch := mux.Subscribe()

	done := make(chan error, 1)
	go func() { done <- mux.Monitor(context.Background()) }()

	var lines []string
	for line := range ch {
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	require.NoError(t, mux.Close())
	<-done

	assert.Equal(t, []string{"100,down,1:1:1:1", "116,move,1:5:5:1"}, lines)
}

func TestSerialMux_SendCommand(t *testing.T) {
	port := NewTestableSerialPort("")
	mux := NewSerialMux(port)

	require.NoError(t, mux.SendCommand("CAL"))
	assert.Equal(t, "CAL\n", port.Written())

	port.WriteError = errors.New("port gone")
	err := mux.SendCommand("CAL")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestSerialMux_Unsubscribe(t *testing.T) {
	port := NewTestableSerialPort("")
	mux := NewSerialMux(port)

	id, ch := mux.Subscribe()
	mux.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("unsubscribed channel should be closed")
	}
}

type recordingSink struct {
	downs, moves, ups []bridge.PointerEvent
}

func (r *recordingSink) PointerDown(ev bridge.PointerEvent) { r.downs = append(r.downs, ev) }
func (r *recordingSink) PointerMove(ev bridge.PointerEvent) { r.moves = append(r.moves, ev) }
func (r *recordingSink) PointerUp(ev bridge.PointerEvent)   { r.ups = append(r.ups, ev) }

func TestPump_DispatchesAndRebases(t *testing.T) {
	port := NewTestableSerialPort(
		"1000,down,1:10:10:1\n" +
			"1016,move,1:20:10:1\n" +
			`{"fw":"1.2.0"}` + "\n" +
			"not a frame\n" +
			"1032,up\n")
	mux := NewSerialMux(port)

	clock := frameclock.NewMockClock(time.Unix(500, 0))
	sink := &recordingSink{}
	stats := &PumpStats{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pumpDone := make(chan struct{})
	go func() {
		Pump(ctx, mux, sink, clock, stats)
		close(pumpDone)
	}()

	require.Eventually(t, func() bool { return mux.SubscriberCount() == 1 },
		time.Second, time.Millisecond)

	monitorDone := make(chan error, 1)
	go func() { monitorDone <- mux.Monitor(ctx) }()
	<-monitorDone
	require.NoError(t, mux.Close())
	<-pumpDone

	require.Len(t, sink.downs, 1)
	require.Len(t, sink.moves, 1)
	require.Len(t, sink.ups, 1)
	assert.Equal(t, int64(3), stats.Frames.Load())
	assert.Equal(t, int64(1), stats.Malformed.Load())
	assert.Equal(t, int64(1), stats.Status.Load())

	// Device millis are rebased onto the clock epoch: the first frame
	// lands at "now" and later frames keep their relative spacing.
	wantBase := float64(time.Unix(500, 0).UnixNano()) / 1e6
	assert.Equal(t, wantBase, sink.downs[0].Timestamp)
	assert.Equal(t, wantBase+16, sink.moves[0].Timestamp)
	assert.Equal(t, wantBase+32, sink.ups[0].Timestamp)
}

func TestPump_StopsOnContextCancel(t *testing.T) {
	port := NewTestableSerialPort("")
	mux := NewSerialMux(port)
	clock := frameclock.NewMockClock(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Pump(ctx, mux, &recordingSink{}, clock, nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump did not stop on cancel")
	}
}
