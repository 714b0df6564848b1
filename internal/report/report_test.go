package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/touchbridge/internal/trace"
)

func seedSession(t *testing.T) (*trace.Store, trace.Session) {
	t.Helper()
	store, err := trace.Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess, err := store.BeginSession("drag", time.Now())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		latency := 2.0 + float64(i%5)
		require.NoError(t, store.RecordFrame(sess.ID, trace.FrameRecord{
			TickMs:     float64(i) * 16,
			TranslateX: float64(i) * 3,
			TranslateY: float64(i) * 4,
			Scale:      1,
			Opacity:    1,
			LatencyMs:  &latency,
		}))
	}
	return store, sess
}

func TestGenerate(t *testing.T) {
	store, sess := seedSession(t)
	outDir := filepath.Join(t.TempDir(), "out")

	summary, err := Generate(store, sess.ID, outDir)
	require.NoError(t, err)

	assert.Equal(t, 20, summary.FrameCount)
	assert.Equal(t, 19*16.0, summary.DurationMs)
	// Last frame translates to (57, 76), magnitude 95.
	assert.InDelta(t, 95, summary.MaxTranslate, 1e-9)
	assert.Greater(t, summary.MeanLatency, 0.0)
	assert.GreaterOrEqual(t, summary.MaxLatency, summary.P95Latency)

	for _, name := range []string{"trajectory.png", "latency.png"} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestGenerate_EmptySession(t *testing.T) {
	store, err := trace.Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	defer store.Close()

	sess, err := store.BeginSession("empty", time.Now())
	require.NoError(t, err)

	_, err = Generate(store, sess.ID, t.TempDir())
	assert.Error(t, err)
}

func TestMakeReportOutputDir(t *testing.T) {
	now := time.Date(2026, 1, 7, 17, 31, 29, 0, time.UTC)
	got := MakeReportOutputDir("reports", "drag", now)
	assert.Equal(t, filepath.Join("reports", "drag", "20260107_173129"), got)

	got = MakeReportOutputDir("reports", "", now)
	assert.Equal(t, filepath.Join("reports", "session", "20260107_173129"), got)
}
