// Auditwire - Cross-Platform Audit Event Streaming
// Copyright 2026 The Auditwire Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/auditwire/auditwire

// Auditwire captures operating system audit events on Linux, macOS, and
// Windows, normalizes them into a single canonical form, and streams
// them live to websocket subscribers. Filter criteria can be changed at
// runtime without dropping subscribers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/auditwire/auditwire/internal/api"
	"github.com/auditwire/auditwire/internal/bridge"
	"github.com/auditwire/auditwire/internal/config"
	"github.com/auditwire/auditwire/internal/ingest"
	"github.com/auditwire/auditwire/internal/logging"
	"github.com/auditwire/auditwire/internal/model"
	"github.com/auditwire/auditwire/internal/source"
	"github.com/auditwire/auditwire/internal/supervisor"
	"github.com/auditwire/auditwire/internal/supervisor/services"
	ws "github.com/auditwire/auditwire/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend", cfg.Source.Backend).
		Str("topic", cfg.Bridge.Topic).
		Msg("starting auditwire")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fan-out sink. Outlives every collection pipeline so subscribers
	// ride across reconfigurations.
	eventBridge := bridge.New(bridge.Config{
		Topic:            cfg.Bridge.Topic,
		SubscriberBuffer: cfg.Bridge.SubscriberBuffer,
	})
	defer func() {
		if err := eventBridge.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing bridge")
		}
	}()

	manager := ingest.NewManager(ingest.Config{
		Source: source.Options{
			Backend:      cfg.Source.Backend,
			AuditLogPath: cfg.Source.AuditLogPath,
			LogCommand:   cfg.Source.LogCommand,
			Channel:      cfg.Source.Channel,
			PollInterval: cfg.Source.PollInterval,
		},
		GraceInterval: cfg.Source.GraceInterval,
		HandoffBuffer: cfg.Bridge.HandoffBuffer,
	}, eventBridge)
	defer manager.Stop()

	// Start collecting with an unfiltered configuration; the API can
	// narrow it at runtime.
	if err := manager.Apply(model.FilterConfig{}); err != nil {
		logging.Error().Err(err).Msg("initial source start failed, waiting for configuration")
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	hub := ws.NewHub()
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(ws.NewStreamSubscriber(hub, eventBridge))

	handler := api.NewHandler(cfg, hub, manager)
	router := api.NewRouter(cfg, handler)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("auditwire stopped")
}
