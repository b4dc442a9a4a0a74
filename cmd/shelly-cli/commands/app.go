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

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shellyops/shelly-manager/pkg/bulk"
	"github.com/shellyops/shelly-manager/pkg/config"
	"github.com/shellyops/shelly-manager/pkg/credential"
	"github.com/shellyops/shelly-manager/pkg/gateway"
	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/mdnsdiscovery"
	"github.com/shellyops/shelly-manager/pkg/scanner"
	"github.com/shellyops/shelly-manager/pkg/transport"
)

// app bundles the collaborators every subcommand needs. Each CLI invocation
// is short-lived, so there's no long-running server here, just the same
// wiring shelly-agent does.
type app struct {
	gateway  *gateway.DeviceGateway
	scanner  *scanner.Scanner
	bulk     *bulk.Orchestrator
	log      logger.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Debug: cfg.Logging.Debug, Output: "stderr"})

	passphrase := os.Getenv(cfg.Credential.PassphraseEnv)

	credStore, err := credential.NewFileStore(cfg.Credential.StorePath, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	authCache := credential.NewAuthStateCache(cfg.Credential.AuthStateTTL)

	rpcTransport := transport.NewRpcTransport(nil, credStore, authCache, log.WithComponent("rpc"))
	legacyTransport := transport.NewLegacyHttpTransport(nil)

	gw := gateway.New(rpcTransport, legacyTransport, log.WithComponent("gateway"))
	mdns := mdnsdiscovery.New(cfg.Mdns.ServiceTypes, cfg.Mdns.Timeout)

	return &app{
		gateway: gw,
		scanner: scanner.New(gw, mdns, log.WithComponent("scanner")),
		bulk:    bulk.New(gw, cfg.Bulk.MaxWorkers, log.WithComponent("bulk")),
		log:     log,
	}, nil
}

// printResult renders v per the --output flag: table (falls back to a plain
// JSON dump, since these results don't have a single obvious tabular shape),
// json, or yaml.
func printResult(v any) error {
	switch output {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		fmt.Print(string(data))
	case "json", "table":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format %q", output)
	}

	return nil
}
