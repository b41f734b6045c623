package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"docflow/internal/config"
	"docflow/internal/daemon"
	"docflow/internal/ipc"
	"docflow/internal/logging"
	"docflow/internal/registry"
	"docflow/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := registry.Open()
	if err != nil {
		logger.Error("open document registry", logging.Error(err))
		return
	}
	defer store.Close()

	manager := workflow.NewManager(cfg, store, logger, buildStages(cfg, logger))

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, socketPath(cfg), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Warn("daemon start", logging.Error(err))
	}

	<-ctx.Done()
	logger.Info("docflowd shutting down")
}
