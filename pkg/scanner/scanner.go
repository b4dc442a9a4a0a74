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

// Package scanner implements Scanner.Scan (spec §4.7): expand or resolve a
// set of targets into addresses, probe each one through the gateway with
// bounded concurrency, and classify/filter the results.
package scanner

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/shellyerr"
	"github.com/shellyops/shelly-manager/pkg/target"
)

const (
	DefaultMaxWorkers = 50
	MaxMaxWorkers     = 200
)

// Gateway is the subset of DeviceGateway the scanner depends on.
type Gateway interface {
	Discover(ctx context.Context, address string) models.DiscoveryResult
}

// MdnsDiscoverer resolves candidate addresses via mDNS, the external
// discovery boundary of spec §4.7.
type MdnsDiscoverer interface {
	DiscoverAddresses(ctx context.Context) ([]string, error)
}

// ProgressFunc, if supplied, is invoked once per probed address regardless
// of outcome, letting a caller track overall scan progress or tally the
// outcomes the public result list drops.
type ProgressFunc func(result models.DiscoveryResult)

// Scanner probes a target population and reports which addresses look like
// live, reachable Shelly devices.
type Scanner struct {
	gateway Gateway
	mdns    MdnsDiscoverer
	log     logger.Logger
}

// New builds a Scanner. mdns may be nil if mDNS scanning is never used.
func New(gateway Gateway, mdns MdnsDiscoverer, log logger.Logger) *Scanner {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Scanner{gateway: gateway, mdns: mdns, log: log}
}

// Scan expands targets (or resolves addresses via mDNS when useMdns is set),
// probes each one bounded by maxWorkers concurrent dispatches, and returns
// the positively-classified subset. progress, if non-nil, is called for
// every probed address including the ones filtered out of the return value.
func (s *Scanner) Scan(
	ctx context.Context, targets []string, maxWorkers int, useMdns bool, progress ProgressFunc,
) ([]models.DiscoveryResult, error) {
	workers := clampWorkers(maxWorkers)

	addresses, err := s.resolveAddresses(ctx, targets, useMdns)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu  sync.Mutex
		out []models.DiscoveryResult
	)

	for _, addr := range addresses {
		addr := addr

		g.Go(func() error {
			result := s.gateway.Discover(gctx, addr)

			if result.Outcome == models.OutcomeDetected ||
				result.Outcome == models.OutcomeUpdateAvailable ||
				result.Outcome == models.OutcomeNoUpdateNeeded {
				if result.AuthRequired {
					result.Outcome = models.OutcomeAuthRequired
				}
			}

			if progress != nil {
				progress(result)
			}

			if includeInResults(result.Outcome) {
				mu.Lock()
				out = append(out, result)
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	return out, nil
}

func (s *Scanner) resolveAddresses(ctx context.Context, targets []string, useMdns bool) ([]string, error) {
	if useMdns {
		if s.mdns == nil {
			return nil, shellyerr.New(shellyerr.KindValidation, "mDNS discovery requested but no discoverer configured")
		}

		return s.mdns.DiscoverAddresses(ctx)
	}

	if len(targets) == 0 {
		return nil, shellyerr.New(shellyerr.KindValidation, "targets must not be empty when mDNS is not enabled")
	}

	return target.Expand(targets)
}

func includeInResults(outcome models.Outcome) bool {
	switch outcome {
	case models.OutcomeDetected, models.OutcomeUpdateAvailable, models.OutcomeNoUpdateNeeded:
		return true
	default:
		return false
	}
}

func clampWorkers(n int) int {
	if n <= 0 {
		return DefaultMaxWorkers
	}

	if n > MaxMaxWorkers {
		return MaxMaxWorkers
	}

	return n
}
