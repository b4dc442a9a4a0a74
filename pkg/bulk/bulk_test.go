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

package bulk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/bulk"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/shellyerr"
)

type fakeGateway struct {
	discoverResults map[string]models.DiscoveryResult
	statusResults   map[string]*models.DeviceSnapshot
	bulkActionFunc  func(address, action string) models.ActionResult
}

func (f *fakeGateway) Discover(_ context.Context, address string) models.DiscoveryResult {
	return f.discoverResults[address]
}

func (f *fakeGateway) GetFullStatus(_ context.Context, address string) (*models.DeviceSnapshot, error) {
	if s, ok := f.statusResults[address]; ok {
		return s, nil
	}

	return nil, shellyerr.New(shellyerr.KindUnreachable, "no status")
}

func (f *fakeGateway) ExecuteComponentAction(_ context.Context, address, componentKey, action string, _ map[string]any) models.ActionResult {
	return models.ActionResult{Address: address, ComponentKey: componentKey, Verb: action, Success: true}
}

func (f *fakeGateway) BulkAction(_ context.Context, address, action string, _ map[string]any) models.ActionResult {
	if f.bulkActionFunc != nil {
		return f.bulkActionFunc(address, action)
	}

	return models.ActionResult{Address: address, Verb: action, Success: true}
}

// TestBulkReboot_MixedPopulation reproduces spec §8 scenario 4.
func TestBulkReboot_MixedPopulation(t *testing.T) {
	gw := &fakeGateway{
		bulkActionFunc: func(address, action string) models.ActionResult {
			switch address {
			case "10.0.0.10":
				return models.ActionResult{Address: address, Verb: action, Success: true}
			case "10.0.0.11":
				return models.ActionResult{Address: address, Verb: action, Success: false, Error: "auth_required"}
			default:
				return models.ActionResult{Address: address, Verb: action, Success: false, Error: "unreachable"}
			}
		},
	}

	o := bulk.New(gw, 10, nil)

	result := o.BulkReboot(context.Background(), []string{"10.0.0.10", "10.0.0.11", "10.0.0.12"}, nil)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
}

func TestBulkScan_FiltersToPositiveOutcomes(t *testing.T) {
	gw := &fakeGateway{discoverResults: map[string]models.DiscoveryResult{
		"a": {Address: "a", Outcome: models.OutcomeDetected},
		"b": {Address: "b", Outcome: models.OutcomeUnreachable},
	}}

	o := bulk.New(gw, 10, nil)

	results := o.BulkScan(context.Background(), []string{"a", "b"}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Address)
}

// TestBulkConfigExport_Shape checks the export shape: a1's two switches are
// both exported successfully, and a2, whose status cannot be fetched, is
// still listed with an empty components map.
func TestBulkConfigExport_Shape(t *testing.T) {
	gw := &fakeGateway{statusResults: map[string]*models.DeviceSnapshot{
		"a1": {
			Address: "a1",
			Components: []models.Component{
				{Key: "switch:0", Type: "switch"},
				{Key: "switch:1", Type: "switch"},
			},
		},
	}}

	o := bulk.New(gw, 10, nil)

	export := o.BulkConfigExport(context.Background(), []string{"a1", "a2"}, []string{"switch"}, nil)

	assert.Equal(t, 2, export.ExportMetadata.TotalDevices)
	require.Contains(t, export.Devices, "a1")
	assert.Len(t, export.Devices["a1"].Components, 2)

	for _, c := range export.Devices["a1"].Components {
		assert.True(t, c.Success)
	}

	require.Contains(t, export.Devices, "a2")
	assert.Empty(t, export.Devices["a2"].Components)
}
