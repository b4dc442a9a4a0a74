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

package httpapi_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/bulk"
	"github.com/shellyops/shelly-manager/pkg/httpapi"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/scanner"
)

type fakeScanner struct{}

func (f *fakeScanner) Scan(_ context.Context, _ []string, _ int, _ bool, _ scanner.ProgressFunc) ([]models.DiscoveryResult, error) {
	return []models.DiscoveryResult{{Address: "10.0.0.1", Outcome: models.OutcomeDetected}}, nil
}

type fakeGateway struct{}

func (f *fakeGateway) GetFullStatus(context.Context, string) (*models.DeviceSnapshot, error) {
	return &models.DeviceSnapshot{Address: "10.0.0.1"}, nil
}

func (f *fakeGateway) ExecuteComponentAction(context.Context, string, string, string, map[string]any) models.ActionResult {
	return models.ActionResult{Success: true}
}

type fakeBulk struct{}

func (f *fakeBulk) BulkScan(context.Context, []string, bulk.ProgressFunc) []models.DiscoveryResult {
	return nil
}
func (f *fakeBulk) BulkUpdate(context.Context, []string, string, bulk.ProgressFunc) models.BulkResult {
	return models.BulkResult{}
}
func (f *fakeBulk) BulkReboot(context.Context, []string, bulk.ProgressFunc) models.BulkResult {
	return models.BulkResult{}
}
func (f *fakeBulk) BulkFactoryReset(context.Context, []string, bulk.ProgressFunc) models.BulkResult {
	return models.BulkResult{}
}
func (f *fakeBulk) BulkStatus(context.Context, []string, bulk.ProgressFunc) []models.DeviceSnapshot {
	return nil
}
func (f *fakeBulk) BulkConfigExport(context.Context, []string, []string, bulk.ProgressFunc) bulk.ConfigExport {
	return bulk.ConfigExport{}
}

func TestHandleScan_ReturnsResults(t *testing.T) {
	srv := httpapi.New(&fakeScanner{}, &fakeGateway{}, &fakeBulk{}, nil)

	req := httptest.NewRequest("POST", "/api/v1/scan", bytes.NewBufferString(`{"targets":["10.0.0.1"]}`))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.0.0.1")
}

func TestHandleDeviceStatus_RequiresAddress(t *testing.T) {
	srv := httpapi.New(&fakeScanner{}, &fakeGateway{}, &fakeBulk{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/devices/status", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}
