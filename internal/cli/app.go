package cli

import (
	"time"

	"github.com/nianverse/storechat/internal/chatapi"
	"github.com/nianverse/storechat/internal/config"
	"github.com/nianverse/storechat/internal/convo"
	"github.com/nianverse/storechat/internal/store"
	"github.com/nianverse/storechat/internal/upload"
)

// app bundles the wired conversation stack for one command invocation.
type app struct {
	cfg      config.Config
	db       *store.DB
	client   *chatapi.Client
	uploader *upload.Coordinator
	sessions *convo.SessionManager
	tracker  *convo.StateTracker
	orch     *convo.Orchestrator
}

// buildApp loads config, opens local storage, and wires the conversation
// pipeline. Callers must Close the returned app.
func buildApp() (*app, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath = paths.Database
	}
	db, err := store.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	client := chatapi.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, log)
	uploader := upload.NewCoordinator(cfg.Upload, log)

	kv := store.NewSQLiteKV(db)
	messages := store.NewSQLiteMessageLog(db)
	tracker := convo.NewStateTracker()
	sessions := convo.NewSessionManager(kv, client, cfg.BusinessTypeHint, log)
	orch := convo.NewOrchestrator(sessions, client, uploader, tracker, messages, cfg.Upload.FolderPrefix, log)

	return &app{
		cfg:      cfg,
		db:       db,
		client:   client,
		uploader: uploader,
		sessions: sessions,
		tracker:  tracker,
		orch:     orch,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	return a.db.Close()
}
