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

package bulk

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shellyops/shelly-manager/pkg/models"
)

// ComponentExport is the per-component entry of a ConfigExport, matching
// the configuration-export wire shape of spec §6.
type ComponentExport struct {
	Type    string         `json:"type"`
	Success bool           `json:"success"`
	Config  map[string]any `json:"config,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// DeviceExport is one device's entry in a ConfigExport.
type DeviceExport struct {
	DeviceInfo models.DeviceInfo          `json:"device_info"`
	Components map[string]ComponentExport `json:"components"`
}

// ExportMetadata is the export_metadata block of a ConfigExport.
type ExportMetadata struct {
	Timestamp      string   `json:"timestamp"`
	TotalDevices   int      `json:"total_devices"`
	ComponentTypes []string `json:"component_types"`
}

// ConfigExport is the full nested result of BulkConfigExport.
type ConfigExport struct {
	ExportMetadata ExportMetadata          `json:"export_metadata"`
	Devices        map[string]DeviceExport `json:"devices"`
}

// BulkConfigExport fetches each address's full status, then, for every
// component whose type is in componentTypes, fetches that component's
// config and records success/failure independently (spec §4.8).
func (o *Orchestrator) BulkConfigExport(
	ctx context.Context, addresses []string, componentTypes []string, progress ProgressFunc,
) ConfigExport {
	wanted := make(map[string]bool, len(componentTypes))
	for _, t := range componentTypes {
		wanted[t] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	var (
		mu      sync.Mutex
		devices = make(map[string]DeviceExport)
		done    int
	)

	total := len(addresses)

	for _, addr := range addresses {
		addr := addr

		g.Go(func() error {
			export := o.exportOneDevice(gctx, addr, wanted)

			mu.Lock()
			devices[addr] = export
			done++

			if progress != nil {
				progress(addr, done, total)
			}

			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return ConfigExport{
		ExportMetadata: ExportMetadata{
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			TotalDevices:   len(addresses),
			ComponentTypes: componentTypes,
		},
		Devices: devices,
	}
}

func (o *Orchestrator) exportOneDevice(ctx context.Context, address string, wanted map[string]bool) DeviceExport {
	export := DeviceExport{Components: make(map[string]ComponentExport)}

	snapshot, err := o.gateway.GetFullStatus(ctx, address)
	if err != nil || snapshot == nil {
		return export
	}

	export.DeviceInfo = snapshot.Info

	for _, c := range snapshot.Components {
		if !wanted[c.Type] {
			continue
		}

		result := o.gateway.ExecuteComponentAction(ctx, address, c.Key, "GetConfig", nil)

		entry := ComponentExport{Type: c.Type, Success: result.Success}

		if result.Success {
			if cfg, ok := result.Data.(map[string]any); ok {
				entry.Config = cfg
			}
		} else {
			entry.Error = result.Error
		}

		export.Components[c.Key] = entry
	}

	return export
}

// BulkConfigApply fetches each address's full status, then, for every
// component matching componentType, applies config via SetConfig and
// records the per-component result.
func (o *Orchestrator) BulkConfigApply(
	ctx context.Context, addresses []string, componentType string, config map[string]any, progress ProgressFunc,
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
			results := o.applyOneDevice(gctx, addr, componentType, config)

			mu.Lock()
			out = append(out, results...)
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

func (o *Orchestrator) applyOneDevice(ctx context.Context, address, componentType string, config map[string]any) []models.ActionResult {
	snapshot, err := o.gateway.GetFullStatus(ctx, address)
	if err != nil || snapshot == nil {
		return []models.ActionResult{{
			Address: address, Verb: "SetConfig", Timestamp: time.Now(),
			Error: "could not fetch device status",
		}}
	}

	var results []models.ActionResult

	for _, c := range snapshot.Components {
		if c.Type != componentType {
			continue
		}

		results = append(results, o.gateway.ExecuteComponentAction(ctx, address, c.Key, "SetConfig", map[string]any{"config": config}))
	}

	return results
}
