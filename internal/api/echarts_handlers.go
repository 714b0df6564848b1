package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"
)

// sessionFromQuery resolves the "session" query parameter, falling back
// to the most recent session when absent.
func (s *Server) sessionFromQuery(r *http.Request) (uuid.UUID, error) {
	if raw := r.URL.Query().Get("session"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid 'session' parameter: %v", err)
		}
		return id, nil
	}
	sessions, err := s.store.ListSessions()
	if err != nil {
		return uuid.Nil, err
	}
	if len(sessions) == 0 {
		return uuid.Nil, fmt.Errorf("no sessions recorded")
	}
	return sessions[0].ID, nil
}

// handleLatencyChart renders per-frame latency for a recorded session as
// an HTML line chart. This is a debugging-only endpoint (no auth) for a
// quick look at a capture without pulling the frames into a notebook.
// Query params:
//   - session (optional; defaults to the most recent session)
func (s *Server) handleLatencyChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "trace store not configured")
		return
	}

	id, err := s.sessionFromQuery(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	frames, err := s.store.SessionFrames(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(frames) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "no frames recorded for session")
		return
	}

	ticks := make([]string, 0, len(frames))
	latency := make([]opts.LineData, 0, len(frames))
	translateX := make([]opts.LineData, 0, len(frames))
	for _, f := range frames {
		ticks = append(ticks, fmt.Sprintf("%.0f", f.TickMs))
		if f.LatencyMs != nil {
			latency = append(latency, opts.LineData{Value: *f.LatencyMs})
		} else {
			latency = append(latency, opts.LineData{Value: nil})
		}
		translateX = append(translateX, opts.LineData{Value: f.TranslateX})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Frame Latency", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Frame Latency", Subtitle: fmt.Sprintf("session=%s frames=%d", id, len(frames))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tick (ms)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms / px"}),
	)
	line.SetXAxis(ticks).
		AddSeries("latency (ms)", latency).
		AddSeries("translate x (px)", translateX)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
