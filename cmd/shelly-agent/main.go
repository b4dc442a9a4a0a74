/*
 * Copyright 2026 Shelly Manager Contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command shelly-agent runs the long-lived HTTP service that fronts the
// scanner, bulk orchestrator, and device gateway for a population of Shelly
// devices.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shellyops/shelly-manager/pkg/bulk"
	"github.com/shellyops/shelly-manager/pkg/config"
	"github.com/shellyops/shelly-manager/pkg/credential"
	"github.com/shellyops/shelly-manager/pkg/gateway"
	"github.com/shellyops/shelly-manager/pkg/httpapi"
	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/mdnsdiscovery"
	"github.com/shellyops/shelly-manager/pkg/scanner"
	"github.com/shellyops/shelly-manager/pkg/transport"
)

// Version is set at build time via ldflags.
//
//nolint:gochecknoglobals // required for build-time ldflags injection
var Version = "dev"

var errShutdownTimeout = errors.New("shutdown timed out")

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to agent config file (defaults to the platform config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLog := logger.New(logger.Config{Level: cfg.Logging.Level, Debug: cfg.Logging.Debug})
	appLog.Info().Str("version", Version).Str("listen_address", cfg.Server.ListenAddress).Msg("starting shelly-agent")

	apiServer, err := buildServer(cfg, appLog)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	return serve(cfg, apiServer, appLog)
}

// buildServer wires the credential store, both device transports, the
// gateway, and the scanner/bulk fan-out layers into a single httpapi.Server.
func buildServer(cfg *config.Config, log logger.Logger) (*httpapi.Server, error) {
	passphrase := os.Getenv(cfg.Credential.PassphraseEnv)
	if passphrase == "" {
		log.Warn().Str("env", cfg.Credential.PassphraseEnv).
			Msg("credential passphrase env var is empty; store will be unreadable if it already has entries")
	}

	credStore, err := credential.NewFileStore(cfg.Credential.StorePath, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	authCache := credential.NewAuthStateCache(cfg.Credential.AuthStateTTL)

	rpcTransport := transport.NewRpcTransport(nil, credStore, authCache, log.WithComponent("rpc"))
	legacyTransport := transport.NewLegacyHttpTransport(nil)

	gw := gateway.New(rpcTransport, legacyTransport, log.WithComponent("gateway"))
	mdns := mdnsdiscovery.New(cfg.Mdns.ServiceTypes, cfg.Mdns.Timeout)

	scan := scanner.New(gw, mdns, log.WithComponent("scanner"))
	orchestrator := bulk.New(gw, cfg.Bulk.MaxWorkers, log.WithComponent("bulk"))

	return httpapi.New(scan, gw, orchestrator, log.WithComponent("httpapi")), nil
}

// serve starts the HTTP listener and blocks until a shutdown signal arrives,
// then drains in-flight requests within shutdownTimeout.
func serve(cfg *config.Config, apiServer *httpapi.Server, log logger.Logger) error {
	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: apiServer.Handler(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serveErr := make(chan error, 1)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(stopCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errShutdownTimeout
		}
		return fmt.Errorf("error during shutdown: %w", err)
	}

	return nil
}
