package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/config"
	"github.com/banshee-data/touchbridge/internal/httputil"
	"github.com/banshee-data/touchbridge/internal/monitoring"
	"github.com/banshee-data/touchbridge/internal/serialmux"
	"github.com/banshee-data/touchbridge/internal/trace"
	"github.com/banshee-data/touchbridge/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server exposes the live pipeline state over HTTP. The mux and store
// are optional; endpoints that need them return 503 when absent.
type Server struct {
	b     *bridge.Bridge
	m     serialmux.SerialMuxInterface
	store *trace.Store
	units string
}

func NewServer(b *bridge.Bridge, m serialmux.SerialMuxInterface, store *trace.Store, velocityUnits string) *Server {
	if !units.IsValid(velocityUnits) {
		velocityUnits = units.PxPerMs
	}
	return &Server{
		b:     b,
		m:     m,
		store: store,
		units: velocityUnits,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.showState)
	mux.HandleFunc("/api/metrics", s.showMetrics)
	mux.HandleFunc("/api/prediction", s.showPrediction)
	mux.HandleFunc("/api/velocity", s.showVelocity)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/sessions", s.listSessions)
	mux.HandleFunc("/api/session_frames", s.listSessionFrames)
	mux.HandleFunc("/command", s.sendCommandHandler)
	mux.HandleFunc("/debug/latency-chart", s.handleLatencyChart)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	httputil.WriteJSONOK(w, v)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	httputil.WriteJSONError(w, status, msg)
}

// stateResponse is the wire shape of /api/state.
type stateResponse struct {
	Displayed bridge.VisualState `json:"displayed"`
	Target    bridge.VisualState `json:"target"`
	Transform string             `json:"transform"`
	Filter    string             `json:"filter"`
	Tracking  bool               `json:"tracking"`
	Momentum  bool               `json:"momentum"`
}

func (s *Server) showState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	displayed := s.b.State()
	s.writeJSON(w, stateResponse{
		Displayed: displayed,
		Target:    s.b.Target(),
		Transform: bridge.TransformString(displayed),
		Filter:    bridge.FilterString(displayed),
		Tracking:  s.b.Tracking(),
		Momentum:  s.b.Momentum().Active,
	})
}

func (s *Server) showMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, s.b.Metrics())
}

func (s *Server) showPrediction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, s.b.Prediction())
}

// velocityResponse reports the most recent sample's velocity in the
// server's configured units (override per request with ?units=).
type velocityResponse struct {
	VelocityX float64 `json:"velocity_x"`
	VelocityY float64 `json:"velocity_y"`
	Units     string  `json:"units"`
}

func (s *Server) showVelocity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	target := s.units
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			s.writeJSONError(w, http.StatusBadRequest,
				"Invalid 'units' parameter, expected one of: "+units.GetValidUnitsString())
			return
		}
		target = u
	}

	history := s.b.History()
	resp := velocityResponse{Units: target}
	if len(history) > 0 {
		last := history[len(history)-1]
		resp.VelocityX = units.ConvertVelocity(last.VelocityX, target)
		resp.VelocityY = units.ConvertVelocity(last.VelocityY, target)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, config.FromOptions(s.b.Options()))
	case http.MethodPost:
		var tc config.TuningConfig
		if err := json.NewDecoder(r.Body).Decode(&tc); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "Invalid config body: "+err.Error())
			return
		}
		if err := tc.Validate(); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.b.SetOptions(tc.Overlay(s.b.Options()))
		s.writeJSON(w, config.FromOptions(s.b.Options()))
	default:
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.store == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "trace store not configured")
		return
	}
	sessions, err := s.store.ListSessions()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []trace.Session{}
	}
	s.writeJSON(w, sessions)
}

func (s *Server) listSessionFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
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
	if frames == nil {
		frames = []trace.FrameRecord{}
	}
	s.writeJSON(w, frames)
}

func (s *Server) sendCommandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.m == nil {
		http.Error(w, "No digitizer attached", http.StatusServiceUnavailable)
		return
	}

	command := r.FormValue("command")

	if err := s.m.SendCommand(command); err != nil {
		http.Error(w, "Failed to send command", http.StatusInternalServerError)
		return
	}
	io.WriteString(w, "Command sent successfully")
}
