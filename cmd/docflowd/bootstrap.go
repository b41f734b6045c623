package main

import (
	"log/slog"
	"path/filepath"

	"docflow/internal/config"
	"docflow/internal/stages/classify"
	"docflow/internal/stages/extract"
	"docflow/internal/stages/route"
	"docflow/internal/workflow"
)

func buildStages(cfg *config.Config, logger *slog.Logger) workflow.StageSet {
	return workflow.StageSet{
		Extract:  extract.NewCapability(cfg, logger),
		Classify: classify.NewCapability(cfg, logger),
		Route:    route.NewCapability(cfg, logger),
	}
}

func socketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "docflow.sock")
	}
	if cfg.Paths.SocketPath != "" {
		return cfg.Paths.SocketPath
	}
	return filepath.Join(cfg.Paths.LogDir, "docflow.sock")
}
