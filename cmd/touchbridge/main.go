// touchbridge runs the touch-to-visual pipeline as a daemon: it reads
// pointer frames from a serial-attached digitizer (or a fixtures file in
// dev mode), drives the visual state at frame rate, and serves the live
// state, metrics, and tuning over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/touchbridge/internal/api"
	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/config"
	"github.com/banshee-data/touchbridge/internal/frameclock"
	"github.com/banshee-data/touchbridge/internal/monitoring"
	"github.com/banshee-data/touchbridge/internal/serialmux"
	"github.com/banshee-data/touchbridge/internal/trace"
	"github.com/banshee-data/touchbridge/internal/units"
	"github.com/banshee-data/touchbridge/internal/version"
)

var (
	devMode     = flag.Bool("dev", false, "Run in dev mode (replay fixtures instead of opening a serial port)")
	fixtures    = flag.String("fixtures", "fixtures.txt", "Fixtures file for dev mode")
	listen      = flag.String("listen", ":8080", "Listen address")
	serialDev   = flag.String("serial", "/dev/ttyACM0", "Serial device for the digitizer")
	baudRate    = flag.Int("baud", 115200, "Serial baud rate")
	dbFile      = flag.String("db", "touchbridge.db", "Trace database path (empty disables recording endpoints)")
	configPath  = flag.String("config", "", "Tuning config JSON (defaults used when empty)")
	velUnits    = flag.String("units", units.PxPerMs, "Velocity units for /api/velocity")
	record      = flag.Bool("record", false, "Record pointer events and frames to a trace session")
	sessionName = flag.String("session-name", "live", "Name for the recorded session")
	debug       = flag.Bool("debug", false, "Enable debug logging")
)

// defaultMapper drags the visual one-to-one with the primary contact and
// presses it slightly into the surface under pressure.
func defaultMapper(sample bridge.PointerSample, _ []bridge.PointerSample) bridge.VisualUpdate {
	scale := 1 - 0.02*sample.Pressure
	return bridge.VisualUpdate{
		TranslateX: bridge.Float(sample.X),
		TranslateY: bridge.Float(sample.Y),
		Scale:      bridge.Float(scale),
	}
}

func main() {
	flag.Parse()
	monitoring.SetDebug(*debug)

	log.Printf("touchbridge %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	opts := cfg.Options()

	var m serialmux.SerialMuxInterface
	if *devMode {
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		m = serialmux.NewMockSerialMux(lines, frameclock.DefaultFrameInterval)
	} else {
		var err error
		m, err = serialmux.NewRealSerialMux(*serialDev, serialmux.PortOptions{BaudRate: *baudRate})
		if err != nil {
			log.Fatalf("failed to open digitizer port: %v", err)
		}
	}
	defer m.Close()

	clock := frameclock.NewRealClock(frameclock.DefaultFrameInterval)
	defer clock.Stop()

	b := bridge.New(clock, defaultMapper, opts)
	defer b.Close()

	var store *trace.Store
	if *dbFile != "" {
		var err error
		store, err = trace.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open trace db: %v", err)
		}
		defer store.Close()
	}

	var sink serialmux.PointerSink = b
	var recorder *trace.Recorder
	if *record {
		if store == nil {
			log.Fatal("-record requires a trace database (-db)")
		}
		var err error
		recorder, err = trace.NewRecorder(store, b, *sessionName, time.Now())
		if err != nil {
			log.Fatalf("failed to begin trace session: %v", err)
		}
		sink = recorder
		log.Printf("recording session %s (%s)", recorder.Session().ID, *sessionName)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the serial port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor serial port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// parse pointer frames off the mux and feed them to the pipeline
	stats := &serialmux.PumpStats{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		serialmux.Pump(ctx, m, sink, clock, stats)
		log.Printf("pump terminated: frames=%d malformed=%d status=%d",
			stats.Frames.Load(), stats.Malformed.Load(), stats.Status.Load())
	}()

	// snapshot displayed frames into the session while recording
	if recorder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			captureFrames(ctx, b, recorder)
		}()
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		handler := api.LoggingMiddleware(api.NewServer(b, m, store, *velUnits).ServeMux())
		server := &http.Server{
			Addr:    *listen,
			Handler: handler,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()

	if recorder != nil {
		if err := recorder.Close(time.Now()); err != nil {
			log.Printf("failed to close trace session: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}

// captureFrames snapshots the displayed state once per frame interval
// while the pipeline is live, tagging each frame with the current
// average latency.
func captureFrames(ctx context.Context, b *bridge.Bridge, recorder *trace.Recorder) {
	ticker := time.NewTicker(frameclock.DefaultFrameInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !b.Tracking() && !b.Momentum().Active {
				continue
			}
			st := b.State()
			frame := trace.FrameRecord{
				TickMs:     float64(now.Sub(start)) / float64(time.Millisecond),
				TranslateX: st.Transform.TranslateX,
				TranslateY: st.Transform.TranslateY,
				Scale:      st.Transform.Scale,
				Rotation:   st.Transform.Rotation,
				Opacity:    st.Opacity,
			}
			if m := b.Metrics(); m.TotalUpdates > 0 {
				latency := m.AverageLatency
				frame.LatencyMs = &latency
			}
			recorder.RecordFrame(frame)
		}
	}
}
