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

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shellyops/shelly-manager/pkg/bulk"
	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/scanner"
)

// ScannerService is the subset of Scanner the API surface depends on.
type ScannerService interface {
	Scan(ctx context.Context, targets []string, maxWorkers int, useMdns bool, progress scanner.ProgressFunc) ([]models.DiscoveryResult, error)
}

// GatewayService is the subset of DeviceGateway the API surface depends on.
type GatewayService interface {
	GetFullStatus(ctx context.Context, address string) (*models.DeviceSnapshot, error)
	ExecuteComponentAction(ctx context.Context, address, componentKey, action string, params map[string]any) models.ActionResult
}

// BulkService is the subset of bulk.Orchestrator the API surface depends on.
type BulkService interface {
	BulkScan(ctx context.Context, addresses []string, progress bulk.ProgressFunc) []models.DiscoveryResult
	BulkUpdate(ctx context.Context, addresses []string, channel string, progress bulk.ProgressFunc) models.BulkResult
	BulkReboot(ctx context.Context, addresses []string, progress bulk.ProgressFunc) models.BulkResult
	BulkFactoryReset(ctx context.Context, addresses []string, progress bulk.ProgressFunc) models.BulkResult
	BulkStatus(ctx context.Context, addresses []string, progress bulk.ProgressFunc) []models.DeviceSnapshot
	BulkConfigExport(ctx context.Context, addresses []string, componentTypes []string, progress bulk.ProgressFunc) bulk.ConfigExport
}

// Server wires the scanner/gateway/bulk services into HTTP handlers.
type Server struct {
	scanner ScannerService
	gateway GatewayService
	bulk    BulkService
	log     logger.Logger
}

// New builds a Server.
func New(scanner ScannerService, gateway GatewayService, orchestrator BulkService, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Server{scanner: scanner, gateway: gateway, bulk: orchestrator, log: log}
}

// Handler returns the full routed, middleware-wrapped http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/scan", s.handleScan)
	mux.HandleFunc("/api/v1/devices/status", s.handleDeviceStatus)
	mux.HandleFunc("/api/v1/devices/action", s.handleDeviceAction)
	mux.HandleFunc("/api/v1/bulk/scan", s.handleBulkScan)
	mux.HandleFunc("/api/v1/bulk/update", s.handleBulkUpdate)
	mux.HandleFunc("/api/v1/bulk/reboot", s.handleBulkReboot)
	mux.HandleFunc("/api/v1/bulk/factory-reset", s.handleBulkFactoryReset)
	mux.HandleFunc("/api/v1/bulk/status", s.handleBulkStatus)
	mux.HandleFunc("/api/v1/bulk/config-export", s.handleBulkConfigExport)

	return WithRecover(s.log, WithLogging(s.log, mux))
}

type scanRequest struct {
	Targets    []string `json:"targets"`
	MaxWorkers int      `json:"max_workers"`
	UseMdns    bool     `json:"use_mdns"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	results, err := s.scanner.Scan(r.Context(), req.Targets, req.MaxWorkers, req.UseMdns, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "address is required", http.StatusBadRequest)
		return
	}

	snapshot, err := s.gateway.GetFullStatus(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

type actionRequest struct {
	Address      string         `json:"address"`
	ComponentKey string         `json:"component_key"`
	Action       string         `json:"action"`
	Params       map[string]any `json:"params"`
}

func (s *Server) handleDeviceAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := s.gateway.ExecuteComponentAction(r.Context(), req.Address, req.ComponentKey, req.Action, req.Params)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, result)
}

type addressesRequest struct {
	Addresses []string `json:"addresses"`
}

func (s *Server) handleBulkScan(w http.ResponseWriter, r *http.Request) {
	var req addressesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.bulk.BulkScan(r.Context(), req.Addresses, nil))
}

type bulkUpdateRequest struct {
	Addresses []string `json:"addresses"`
	Channel   string   `json:"channel"`
}

func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.bulk.BulkUpdate(r.Context(), req.Addresses, req.Channel, nil))
}

func (s *Server) handleBulkReboot(w http.ResponseWriter, r *http.Request) {
	var req addressesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.bulk.BulkReboot(r.Context(), req.Addresses, nil))
}

func (s *Server) handleBulkFactoryReset(w http.ResponseWriter, r *http.Request) {
	var req addressesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.bulk.BulkFactoryReset(r.Context(), req.Addresses, nil))
}

func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req addressesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.bulk.BulkStatus(r.Context(), req.Addresses, nil))
}

type bulkConfigExportRequest struct {
	Addresses      []string `json:"addresses"`
	ComponentTypes []string `json:"component_types"`
}

func (s *Server) handleBulkConfigExport(w http.ResponseWriter, r *http.Request) {
	var req bulkConfigExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.bulk.BulkConfigExport(r.Context(), req.Addresses, req.ComponentTypes, nil))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}
