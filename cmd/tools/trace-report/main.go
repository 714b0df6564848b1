// trace-report renders a recorded trace session into PNG plots and a
// JSON summary. With -replay it re-runs the session's pointer events
// through a fresh pipeline first, so tuning changes can be compared
// against the original capture.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/config"
	"github.com/banshee-data/touchbridge/internal/report"
	"github.com/banshee-data/touchbridge/internal/security"
	"github.com/banshee-data/touchbridge/internal/trace"
)

var (
	dbFile     = flag.String("db", "touchbridge.db", "Trace database path")
	sessionID  = flag.String("session", "", "Session id (defaults to the most recent session)")
	outDir     = flag.String("out", "reports", "Base output directory")
	listOnly   = flag.Bool("list", false, "List sessions and exit")
	replay     = flag.Bool("replay", false, "Replay recorded events through a fresh pipeline before reporting")
	configPath = flag.String("config", "", "Tuning config JSON for replay")
)

func replayMapper(sample bridge.PointerSample, _ []bridge.PointerSample) bridge.VisualUpdate {
	return bridge.VisualUpdate{
		TranslateX: bridge.Float(sample.X),
		TranslateY: bridge.Float(sample.Y),
	}
}

func main() {
	flag.Parse()

	store, err := trace.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open trace db: %v", err)
	}
	defer store.Close()

	sessions, err := store.ListSessions()
	if err != nil {
		log.Fatalf("failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		log.Fatal("no sessions recorded")
	}

	if *listOnly {
		for _, s := range sessions {
			ended := "running"
			if s.EndedAt != nil {
				ended = s.EndedAt.Format(time.RFC3339)
			}
			fmt.Printf("%s  %-20s  started=%s  ended=%s\n",
				s.ID, s.Name, s.StartedAt.Format(time.RFC3339), ended)
		}
		return
	}

	session := sessions[0]
	if *sessionID != "" {
		id, err := uuid.Parse(*sessionID)
		if err != nil {
			log.Fatalf("invalid session id: %v", err)
		}
		found := false
		for _, s := range sessions {
			if s.ID == id {
				session = s
				found = true
				break
			}
		}
		if !found {
			log.Fatalf("session %s not found", id)
		}
	}

	if *replay {
		session = replaySession(store, session)
	}

	dir := report.MakeReportOutputDir(*outDir, session.Name, time.Now())
	if err := security.ValidateExportPath(dir); err != nil {
		log.Fatalf("invalid output directory: %v", err)
	}
	summary, err := report.Generate(store, session.ID, dir)
	if err != nil {
		log.Fatalf("failed to generate report: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		log.Fatalf("failed to encode summary: %v", err)
	}
	log.Printf("report written to %s", dir)
}

// replaySession re-runs a session's events through a fresh pipeline and
// stores the resulting frames under a new derived session.
func replaySession(store *trace.Store, src trace.Session) trace.Session {
	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	frames, err := trace.Replay(store, src.ID, replayMapper, cfg.Options())
	if err != nil {
		log.Fatalf("failed to replay session: %v", err)
	}

	derived, err := store.BeginSession(src.Name+"-replay", time.Now())
	if err != nil {
		log.Fatalf("failed to create replay session: %v", err)
	}
	for _, f := range frames {
		if err := store.RecordFrame(derived.ID, f); err != nil {
			log.Fatalf("failed to store replay frame: %v", err)
		}
	}
	if err := store.EndSession(derived.ID, time.Now()); err != nil {
		log.Fatalf("failed to end replay session: %v", err)
	}

	log.Printf("replayed %d frames into session %s", len(frames), derived.ID)
	return derived
}
