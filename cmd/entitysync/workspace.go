package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"entitysync/internal/config"
	"entitysync/internal/logging"
	"entitysync/internal/workspace"
)

// openWorkspace loads the project config, opens its store and restores the
// workspace. Logs go to stderr so command output stays clean.
func openWorkspace(ctx context.Context) (*workspace.Workspace, *logrus.Logger, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	ws, err := workspace.Open(ctx, workspace.Options{
		Config: cfg,
		Store:  db,
		Log:    logging.Component(log, "workspace"),
	})
	if err != nil {
		_ = db.Close(ctx)
		return nil, nil, err
	}
	return ws, log, nil
}
