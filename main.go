// sekretar - a privacy-aware assistant that turns free-form text into
// calendar events, tasks, and notes.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mkuznets/sekretar/internal/cli"
	"github.com/mkuznets/sekretar/internal/cloud"
	"github.com/mkuznets/sekretar/internal/config"
	"github.com/mkuznets/sekretar/internal/lmstudio"
	"github.com/mkuznets/sekretar/internal/router"
	"github.com/mkuznets/sekretar/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Printf("sekretar %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sekretar: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := setupLogging(); err != nil {
		return err
	}

	local := lmstudio.NewClientWithConfig(&lmstudio.ClientConfig{
		BaseURL:      cfg.Local.BaseURL,
		Timeout:      time.Duration(cfg.Local.TimeoutSecs) * time.Second,
		ProbeTimeout: time.Duration(cfg.Local.ProbeTimeoutSecs) * time.Second,
	})
	remote := cloud.NewClient(cfg.Cloud.OpenRouterKey).
		WithTimeout(time.Duration(cfg.Cloud.TimeoutSecs) * time.Second)

	rt := router.New(local, remote, cfg.Catalog())

	var history *storage.History
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return err
		}
		history, err = storage.Open(path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer history.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, rt, history)
	return app.Run(ctx)
}

// setupLogging sends the log to a file under the config dir; the
// terminal belongs to the conversation.
func setupLogging() error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "sekretar.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	return nil
}
