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

// Package bulk implements BulkOrchestrator (spec §4.8): the fan-out layer
// above DeviceGateway that runs one operation across many addresses with
// bounded concurrency and per-device isolation.
package bulk

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/models"
)

const (
	DefaultMaxWorkers = 10
	MaxMaxWorkers     = 50
)

// Gateway is the subset of DeviceGateway the orchestrator depends on.
type Gateway interface {
	Discover(ctx context.Context, address string) models.DiscoveryResult
	GetFullStatus(ctx context.Context, address string) (*models.DeviceSnapshot, error)
	ExecuteComponentAction(ctx context.Context, address, componentKey, action string, params map[string]any) models.ActionResult
	BulkAction(ctx context.Context, address, action string, params map[string]any) models.ActionResult
}

// ProgressFunc, if supplied, is invoked once per completed per-device
// operation across every orchestrator method.
type ProgressFunc func(address string, done, total int)

// Orchestrator runs bulk operations across a device population.
type Orchestrator struct {
	gateway    Gateway
	maxWorkers int
	log        logger.Logger
}

// New builds an Orchestrator. maxWorkers is clamped to
// [1, MaxMaxWorkers] and defaults to DefaultMaxWorkers when <= 0.
func New(gateway Gateway, maxWorkers int, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Orchestrator{gateway: gateway, maxWorkers: clampWorkers(maxWorkers), log: log}
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

// fanOut runs fn(address) for every address bounded by o.maxWorkers,
// collecting results without cancelling siblings on individual failure.
func (o *Orchestrator) fanOut(
	ctx context.Context, addresses []string, progress ProgressFunc, fn func(ctx context.Context, address string) models.ActionResult,
) []models.ActionResult {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	var (
		mu   sync.Mutex
		out  []models.ActionResult
		done int
	)

	total := len(addresses)

	for _, addr := range addresses {
		addr := addr

		g.Go(func() error {
			result := fn(gctx, addr)

			mu.Lock()
			out = append(out, result)
			done++

			if progress != nil {
				progress(addr, done, total)
			}

			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return out
}

func (o *Orchestrator) bulkResult(verb string, results []models.ActionResult, start time.Time) models.BulkResult {
	agg := models.BulkResult{Verb: verb, Duration: time.Since(start)}

	for _, r := range results {
		agg.AddResult(r)
	}

	return agg
}

// BulkScan runs Discover against every address and filters to
// positively-detected outcomes (spec §4.8).
func (o *Orchestrator) BulkScan(ctx context.Context, addresses []string, progress ProgressFunc) []models.DiscoveryResult {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	var (
		mu   sync.Mutex
		out  []models.DiscoveryResult
		done int
	)

	total := len(addresses)

	for _, addr := range addresses {
		addr := addr

		g.Go(func() error {
			result := o.gateway.Discover(gctx, addr)

			mu.Lock()
			done++

			if isPositive(result.Outcome) {
				out = append(out, result)
			}

			if progress != nil {
				progress(addr, done, total)
			}

			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return out
}

func isPositive(outcome models.Outcome) bool {
	switch outcome {
	case models.OutcomeDetected, models.OutcomeUpdateAvailable, models.OutcomeNoUpdateNeeded:
		return true
	default:
		return false
	}
}

// BulkUpdate delegates to DeviceGateway.BulkAction with shelly.Update and
// the given firmware channel (default "stable").
func (o *Orchestrator) BulkUpdate(ctx context.Context, addresses []string, channel string, progress ProgressFunc) models.BulkResult {
	if channel == "" {
		channel = "stable"
	}

	start := time.Now()

	results := o.fanOut(ctx, addresses, progress, func(ctx context.Context, address string) models.ActionResult {
		return o.gateway.BulkAction(ctx, address, "shelly.Update", map[string]any{"channel": channel})
	})

	return o.bulkResult("shelly.Update", results, start)
}

// BulkReboot delegates to DeviceGateway.BulkAction with shelly.Reboot.
func (o *Orchestrator) BulkReboot(ctx context.Context, addresses []string, progress ProgressFunc) models.BulkResult {
	start := time.Now()

	results := o.fanOut(ctx, addresses, progress, func(ctx context.Context, address string) models.ActionResult {
		return o.gateway.BulkAction(ctx, address, "shelly.Reboot", nil)
	})

	return o.bulkResult("shelly.Reboot", results, start)
}

// BulkFactoryReset delegates to DeviceGateway.BulkAction with
// shelly.FactoryReset.
func (o *Orchestrator) BulkFactoryReset(ctx context.Context, addresses []string, progress ProgressFunc) models.BulkResult {
	start := time.Now()

	results := o.fanOut(ctx, addresses, progress, func(ctx context.Context, address string) models.ActionResult {
		return o.gateway.BulkAction(ctx, address, "shelly.FactoryReset", nil)
	})

	return o.bulkResult("shelly.FactoryReset", results, start)
}

// BulkStatus runs GetFullStatus against every address, swallowing and
// logging individual failures, and returns the snapshots that succeeded.
func (o *Orchestrator) BulkStatus(ctx context.Context, addresses []string, progress ProgressFunc) []models.DeviceSnapshot {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	var (
		mu   sync.Mutex
		out  []models.DeviceSnapshot
		done int
	)

	total := len(addresses)

	for _, addr := range addresses {
		addr := addr

		g.Go(func() error {
			snapshot, err := o.gateway.GetFullStatus(gctx, addr)

			mu.Lock()
			done++

			if err != nil {
				o.log.Warn().Str("address", addr).Err(err).Msg("bulk status failed for device")
			} else if snapshot != nil {
				out = append(out, *snapshot)
			}

			if progress != nil {
				progress(addr, done, total)
			}

			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return out
}
