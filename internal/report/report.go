// Package report renders recorded trace sessions into PNG time series
// plots and a numeric summary, for offline tuning of the pipeline.
package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/touchbridge/internal/security"
	"github.com/banshee-data/touchbridge/internal/trace"
)

// Summary aggregates a session's frames into the numbers that matter
// when tuning: how long the gesture ran, how far it travelled, and what
// the per-frame latency looked like.
type Summary struct {
	SessionID    uuid.UUID `json:"session_id"`
	FrameCount   int       `json:"frame_count"`
	DurationMs   float64   `json:"duration_ms"`
	MaxTranslate float64   `json:"max_translate_px"`
	MeanLatency  float64   `json:"mean_latency_ms"`
	P95Latency   float64   `json:"p95_latency_ms"`
	MaxLatency   float64   `json:"max_latency_ms"`
}

// Generate loads a session's frames and writes trajectory.png and
// latency.png into outputDir, returning the numeric summary.
func Generate(store *trace.Store, sessionID uuid.UUID, outputDir string) (*Summary, error) {
	frames, err := store.SessionFrames(sessionID)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("session %s has no frames", sessionID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	summary := summarize(sessionID, frames)

	if err := plotTrajectory(frames, filepath.Join(outputDir, "trajectory.png")); err != nil {
		return nil, err
	}
	if err := plotLatency(frames, filepath.Join(outputDir, "latency.png")); err != nil {
		return nil, err
	}

	return summary, nil
}

func summarize(sessionID uuid.UUID, frames []trace.FrameRecord) *Summary {
	s := &Summary{
		SessionID:  sessionID,
		FrameCount: len(frames),
		DurationMs: frames[len(frames)-1].TickMs - frames[0].TickMs,
	}

	var latencies []float64
	for _, f := range frames {
		if mag := math.Hypot(f.TranslateX, f.TranslateY); mag > s.MaxTranslate {
			s.MaxTranslate = mag
		}
		if f.LatencyMs != nil {
			latencies = append(latencies, *f.LatencyMs)
		}
	}

	if len(latencies) > 0 {
		s.MeanLatency = stat.Mean(latencies, nil)
		sorted := append([]float64(nil), latencies...)
		sort.Float64s(sorted)
		s.P95Latency = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		s.MaxLatency = sorted[len(sorted)-1]
	}

	return s
}

var (
	colorX       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorY       = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorLatency = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func plotTrajectory(frames []trace.FrameRecord, path string) error {
	p := plot.New()
	p.Title.Text = "Displayed Translation"
	p.X.Label.Text = "Tick (ms)"
	p.Y.Label.Text = "Translation (px)"

	xPts := make(plotter.XYs, 0, len(frames))
	yPts := make(plotter.XYs, 0, len(frames))
	for _, f := range frames {
		xPts = append(xPts, plotter.XY{X: f.TickMs, Y: f.TranslateX})
		yPts = append(yPts, plotter.XY{X: f.TickMs, Y: f.TranslateY})
	}

	xLine, err := plotter.NewLine(xPts)
	if err != nil {
		return err
	}
	xLine.Color = colorX
	xLine.Width = vg.Points(1)
	p.Add(xLine)
	p.Legend.Add("translate x", xLine)

	yLine, err := plotter.NewLine(yPts)
	if err != nil {
		return err
	}
	yLine.Color = colorY
	yLine.Width = vg.Points(1)
	p.Add(yLine)
	p.Legend.Add("translate y", yLine)

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}

func plotLatency(frames []trace.FrameRecord, path string) error {
	p := plot.New()
	p.Title.Text = "Frame Latency"
	p.X.Label.Text = "Tick (ms)"
	p.Y.Label.Text = "Latency (ms)"

	pts := make(plotter.XYs, 0, len(frames))
	for _, f := range frames {
		if f.LatencyMs != nil {
			pts = append(pts, plotter.XY{X: f.TickMs, Y: *f.LatencyMs})
		}
	}

	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colorLatency
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("latency", line)
		p.Legend.Top = true
		p.Legend.Left = false
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save latency plot: %w", err)
	}
	return nil
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MakeReportOutputDir builds a timestamped output directory for a
// session's report files: <baseDir>/<session-name>/<timestamp>. Session
// names are user supplied, so they are sanitized before use as a path
// component.
func MakeReportOutputDir(baseDir, sessionName string, now time.Time) string {
	name := security.SanitizeFilename(sessionName)
	if name == "unknown" {
		name = "session"
	}
	return filepath.Join(baseDir, name, FormatTimestamp(now))
}
