package main

import (
	"fmt"
	"path/filepath"

	"missiongate/internal/config"
	"missiongate/internal/extract"
	"missiongate/internal/gate"
	"missiongate/internal/logging"
	"missiongate/internal/mission"
	"missiongate/internal/session"
	"missiongate/internal/store"
	"missiongate/internal/types"
)

// app bundles everything a command needs: the coordinator plus the handles
// that must be closed on exit.
type app struct {
	cfg         *config.Config
	workspace   string
	coordinator *mission.Coordinator
	missionLog  *store.MissionLog
	watcher     *config.Watcher
}

// buildApp wires the full gate stack for a workspace. withLog controls
// whether the SQLite mission log is opened; read-only commands that never
// create missions can skip it.
func buildApp(withLog bool) (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	cfg, err := config.Load(ws)
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(ws, logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Categories: cfg.Logging.Categories,
		Level:      cfg.Logging.Level,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	a := &app{cfg: cfg, workspace: ws}

	var sink types.MissionEventSink
	if withLog {
		a.missionLog, err = store.NewMissionLog(a.databasePath())
		if err != nil {
			return nil, err
		}
		sink = a.missionLog
	}

	// extract.New returns nil when the extractor is disabled; the engine
	// treats a nil extractor as heuristics-only.
	var extractor types.FieldExtractor
	if client := extract.New(cfg.Extractor, cfg.ExtractorTimeout()); client != nil {
		extractor = client
	}

	a.coordinator = mission.NewCoordinator(
		gate.NewEngine(extractor, cfg.ExtractorTimeout()),
		session.NewStore(),
		gate.LexicalClassifier{},
		consoleApprover{},
		newLocalExecutor(),
		sink,
	)

	return a, nil
}

// watchConfig starts live reload of .gate/config.json. Only the long-running
// interactive mode uses it.
func (a *app) watchConfig() {
	w, err := config.NewWatcher(a.workspace)
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("config watcher unavailable: %v", err)
		return
	}
	if err := w.Start(); err != nil {
		logging.Get(logging.CategoryBoot).Warn("config watcher failed to start: %v", err)
		return
	}
	a.watcher = w
}

func (a *app) close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.missionLog != nil {
		_ = a.missionLog.Close()
	}
	logging.Close()
}

func (a *app) databasePath() string {
	path := a.cfg.Store.DatabasePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.workspace, path)
	}
	return path
}
