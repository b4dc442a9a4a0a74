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

// Package gateway implements DeviceGateway (spec §4.6): the single
// per-device entry point that hides the modern-RPC/legacy-HTTP duality from
// every caller above it, dispatching each public verb through whichever
// transport the device actually speaks.
package gateway

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shellyops/shelly-manager/pkg/component"
	"github.com/shellyops/shelly-manager/pkg/legacy"
	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/shellyerr"
	"github.com/shellyops/shelly-manager/pkg/transport"
)

// Default timeouts per spec §4.7's cancellation-and-timeouts note.
const (
	DiscoveryTimeout = 3 * time.Second
	StatusTimeout    = 10 * time.Second
)

const (
	methodCheckForUpdate = "Shelly.CheckForUpdate"
	methodGetComponents  = "Shelly.GetComponents"
	methodGetStatus      = "Shelly.GetStatus"
	methodListMethods    = "Shelly.ListMethods"
	methodGetConfig      = "Sys.GetConfig"
	methodSetConfig      = "Sys.SetConfig"
)

// bulkVerbs is the fixed, device-wide verb set BulkAction accepts (spec
// §4.6). Anything else is rejected without calling any device.
var bulkVerbs = map[string]bool{
	"shelly.Update":       true,
	"shelly.Reboot":       true,
	"shelly.FactoryReset": true,
}

// DeviceGateway is the single collaborator the scanner and bulk orchestrator
// talk to per device. It owns the modern RPC transport and the legacy HTTP
// transport and decides, per call, which one to use.
type DeviceGateway struct {
	rpc    *transport.RpcTransport
	legacy *transport.LegacyHttpTransport
	log    logger.Logger
}

// New builds a DeviceGateway over the given transports.
func New(rpc *transport.RpcTransport, legacyTransport *transport.LegacyHttpTransport, log logger.Logger) *DeviceGateway {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &DeviceGateway{rpc: rpc, legacy: legacyTransport, log: log}
}

// Discover probes address and classifies it per spec §4.6/§4.7.
func (g *DeviceGateway) Discover(ctx context.Context, address string) models.DiscoveryResult {
	start := time.Now()

	raw, elapsed, err := g.rpc.Call(ctx, address, transport.MethodGetDeviceInfo, nil, DiscoveryTimeout, nil)
	if err == nil {
		return g.discoverModern(ctx, address, raw, elapsed)
	}

	g.log.Debug().Str("address", address).Err(err).Msg("modern discovery failed, falling back to legacy")

	legacyResult, legacyErr := g.discoverLegacy(ctx, address, start)
	if legacyErr == nil {
		return legacyResult
	}

	return models.DiscoveryResult{
		Address:      address,
		Outcome:      outcomeFor(legacyErr),
		ResponseTime: time.Since(start),
		Error:        legacyErr.Error(),
	}
}

func (g *DeviceGateway) discoverModern(ctx context.Context, address string, raw json.RawMessage, elapsed time.Duration) models.DiscoveryResult {
	var info struct {
		ID     string `json:"id"`
		Model  string `json:"model"`
		App    string `json:"app"`
		MAC    string `json:"mac"`
		Gen    int    `json:"gen"`
		FWID   string `json:"fw_id"`
	}

	_ = json.Unmarshal(raw, &info)

	result := models.DiscoveryResult{
		Address:      address,
		Outcome:      models.OutcomeDetected,
		DeviceID:     info.ID,
		DeviceType:   info.App,
		DeviceName:   info.Model,
		FirmwareID:   info.FWID,
		ResponseTime: elapsed,
		AuthRequired: g.rpc.RequiresAuth(address),
	}

	updateRaw, _, err := g.rpc.Call(ctx, address, methodCheckForUpdate, nil, DiscoveryTimeout, nil)
	if err != nil {
		return result
	}

	var update struct {
		Stable *struct {
			Version string `json:"version"`
		} `json:"stable"`
	}

	if err := json.Unmarshal(updateRaw, &update); err == nil && update.Stable != nil {
		result.Outcome = models.OutcomeUpdateAvailable
	} else {
		result.Outcome = models.OutcomeNoUpdateNeeded
	}

	return result
}

func (g *DeviceGateway) discoverLegacy(ctx context.Context, address string, start time.Time) (models.DiscoveryResult, error) {
	shelly, err := g.legacy.Get(ctx, address, "shelly", nil, DiscoveryTimeout)
	if err != nil {
		return models.DiscoveryResult{}, err
	}

	status, _ := g.legacy.Get(ctx, address, "status", nil, DiscoveryTimeout)
	settings, _ := g.legacy.Get(ctx, address, "settings", nil, DiscoveryTimeout)

	result := models.DiscoveryResult{
		Address:      address,
		DeviceID:     getString(shelly, "id"),
		DeviceType:   getString(shelly, "type"),
		FirmwareID:   getString(shelly, "fw"),
		ResponseTime: time.Since(start),
		Outcome:      models.OutcomeNoUpdateNeeded,
	}

	if getString(shelly, "id") == "" && getString(shelly, "type") == "" {
		result.Outcome = models.OutcomeNotADevice
		return result, nil
	}

	if device := getMap(settings, "device"); device != nil {
		result.DeviceName = getString(device, "name")
	}

	update := getMap(status, "update")

	hasUpdate := getBool(update, "has_update") || getBool(status, "has_update")
	newVer := getString(update, "new_version")
	oldVer := getString(update, "old_version")

	if hasUpdate || (newVer != "" && newVer != oldVer) {
		result.Outcome = models.OutcomeUpdateAvailable
	}

	return result, nil
}

// GetFullStatus assembles a DeviceSnapshot for address, trying the modern
// RPC surface first and falling back to the legacy mapping path (spec
// §4.6).
func (g *DeviceGateway) GetFullStatus(ctx context.Context, address string) (*models.DeviceSnapshot, error) {
	infoRaw, _, infoErr := g.rpc.Call(ctx, address, transport.MethodGetDeviceInfo, nil, StatusTimeout, nil)
	componentsRaw, _, componentsErr := g.rpc.Call(ctx, address, methodGetComponents, map[string]any{"offset": 0}, StatusTimeout, nil)
	statusRaw, _, statusErr := g.rpc.Call(ctx, address, methodGetStatus, nil, StatusTimeout, nil)
	methodsRaw, _, methodsErr := g.rpc.Call(ctx, address, methodListMethods, nil, StatusTimeout, nil)

	if componentsErr != nil && statusErr != nil && infoErr != nil {
		return g.getFullStatusLegacy(ctx, address)
	}

	var info models.DeviceInfo
	if infoErr == nil {
		var raw struct {
			Name  string `json:"name"`
			Model string `json:"model"`
			FWID  string `json:"fw_id"`
			MAC   string `json:"mac"`
			App   string `json:"app"`
			Gen   int    `json:"gen"`
		}

		if json.Unmarshal(infoRaw, &raw) == nil {
			info = models.DeviceInfo{
				Name: raw.Name, Model: raw.Model, FirmwareID: raw.FWID,
				HardwareAddress: raw.MAC, AppName: raw.App, Generation: raw.Gen,
			}
		}
	}

	var methodList []string
	if methodsErr == nil {
		var raw struct {
			Methods []string `json:"methods"`
		}

		_ = json.Unmarshal(methodsRaw, &raw)
		methodList = raw.Methods
	}

	var statusMap map[string]any
	if statusErr == nil {
		_ = json.Unmarshal(statusRaw, &statusMap)
	}

	var components []models.Component

	if componentsErr == nil {
		var raw struct {
			Components []struct {
				Key    string         `json:"key"`
				Status map[string]any `json:"status"`
				Config map[string]any `json:"config"`
			} `json:"components"`
		}

		if json.Unmarshal(componentsRaw, &raw) == nil {
			for _, c := range raw.Components {
				ctype, id, hasID := models.ParseComponentKey(c.Key)
				components = append(components, models.Component{
					Key: c.Key, Type: ctype, ID: id, HasID: hasID,
					Status:           c.Status,
					Config:           c.Config,
					AvailableActions: component.AvailableActions(ctype, methodList),
				})
			}
		}
	}

	if statusMap != nil {
		if zigbee, ok := statusMap["zigbee"].(map[string]any); ok && !hasComponentType(components, "zigbee") {
			components = append(components, models.Component{
				Key: "zigbee", Type: "zigbee", Status: zigbee,
				AvailableActions: component.AvailableActions("zigbee", methodList),
			})
		}
	}

	return &models.DeviceSnapshot{
		Address:     address,
		Components:  components,
		Info:        info,
		LastUpdated: time.Now(),
		MethodList:  methodList,
	}, nil
}

func (g *DeviceGateway) getFullStatusLegacy(ctx context.Context, address string) (*models.DeviceSnapshot, error) {
	shelly, err := g.legacy.Get(ctx, address, "shelly", nil, StatusTimeout)
	if err != nil {
		return nil, err
	}

	status, _ := g.legacy.Get(ctx, address, "status", nil, StatusTimeout)
	settings, _ := g.legacy.Get(ctx, address, "settings", nil, StatusTimeout)

	components := legacy.MapComponents(shelly, status, settings)

	return &models.DeviceSnapshot{
		Address:    address,
		Components: components,
		Info: models.DeviceInfo{
			Model:      getString(shelly, "type"),
			FirmwareID: getString(shelly, "fw"),
			Generation: 1,
		},
		LastUpdated: time.Now(),
	}, nil
}

// ExecuteComponentAction runs one action against one component of address,
// dispatching through the legacy transport for "Legacy."-prefixed actions
// and through the modern RPC transport otherwise (spec §4.6).
func (g *DeviceGateway) ExecuteComponentAction(
	ctx context.Context, address, componentKey, action string, params map[string]any,
) models.ActionResult {
	result := models.ActionResult{Address: address, Verb: action, ComponentKey: componentKey, Timestamp: time.Now()}

	if strings.HasPrefix(action, "Legacy.") {
		return g.executeLegacyAction(ctx, address, componentKey, action, result)
	}

	return g.executeModernAction(ctx, address, componentKey, action, params, result)
}

func (g *DeviceGateway) executeModernAction(
	ctx context.Context, address, componentKey, action string, params map[string]any, result models.ActionResult,
) models.ActionResult {
	ctype, id, hasID := models.ParseComponentKey(componentKey)
	method := component.APIPrefix(ctype) + "." + action

	methodsRaw, _, err := g.rpc.Call(ctx, address, methodListMethods, nil, StatusTimeout, nil)
	if err == nil {
		var raw struct {
			Methods []string `json:"methods"`
		}

		if json.Unmarshal(methodsRaw, &raw) == nil && !component.CanPerformAction(ctype, action, raw.Methods) {
			result.Error = "method not available: " + method
			return result
		}
	}

	callParams := map[string]any{}
	if hasID {
		callParams["id"] = id
	}

	for k, v := range params {
		callParams[k] = v
	}

	raw, _, err := g.rpc.Call(ctx, address, method, callParams, StatusTimeout, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true

	var data any
	_ = json.Unmarshal(raw, &data)
	result.Data = data

	return result
}

func (g *DeviceGateway) executeLegacyAction(
	ctx context.Context, address, componentKey, action string, result models.ActionResult,
) models.ActionResult {
	ctype, id, hasID := models.ParseComponentKey(componentKey)
	if !hasID {
		id = 0
	}

	endpoint, params, err := legacyEndpointFor(ctype, id, action)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	resp, err := g.legacy.Get(ctx, address, endpoint, params, StatusTimeout)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Data = resp

	return result
}

// legacyEndpointFor implements the fixed legacy action mapping table of
// spec §4.6.
func legacyEndpointFor(componentType string, id int, action string) (string, url.Values, error) {
	idStr := strconv.Itoa(id)

	switch componentType {
	case "switch":
		switch action {
		case "Legacy.Toggle":
			return "relay/" + idStr, url.Values{"turn": {"toggle"}}, nil
		case "Legacy.TurnOn":
			return "relay/" + idStr, url.Values{"turn": {"on"}}, nil
		case "Legacy.TurnOff":
			return "relay/" + idStr, url.Values{"turn": {"off"}}, nil
		}
	case "cover":
		switch action {
		case "Legacy.Open":
			return "roller/" + idStr, url.Values{"go": {"open"}}, nil
		case "Legacy.Close":
			return "roller/" + idStr, url.Values{"go": {"close"}}, nil
		case "Legacy.Stop":
			return "roller/" + idStr, url.Values{"go": {"stop"}}, nil
		}
	case "input":
		switch action {
		case "Legacy.InputMomentary":
			return "settings/relay/" + idStr, url.Values{"btn_type": {"momentary"}}, nil
		case "Legacy.InputToggle":
			return "settings/relay/" + idStr, url.Values{"btn_type": {"toggle"}}, nil
		case "Legacy.InputEdge":
			return "settings/relay/" + idStr, url.Values{"btn_type": {"edge"}}, nil
		case "Legacy.InputDetached":
			return "settings/relay/" + idStr, url.Values{"btn_type": {"detached"}}, nil
		case "Legacy.InputActivation":
			return "settings/relay/" + idStr, url.Values{"btn_type": {"activation"}}, nil
		case "Legacy.InputMomentaryRelease":
			return "settings/relay/" + idStr, url.Values{"btn_type": {"momentary_release"}}, nil
		case "Legacy.InputReverse":
			return "settings/relay/" + idStr, url.Values{"btn_reverse": {"1"}}, nil
		case "Legacy.InputNormal":
			return "settings/relay/" + idStr, url.Values{"btn_reverse": {"0"}}, nil
		}
	}

	return "", nil, shellyerr.New(shellyerr.KindUnsupportedAction, "Unsupported legacy action: "+action+" on "+componentType)
}

// BulkAction runs action against the single device at address, restricted to
// the fixed device-wide verb set (spec §4.6). Fan-out across many addresses
// and per-device isolation are the caller's responsibility (pkg/bulk).
func (g *DeviceGateway) BulkAction(ctx context.Context, address, action string, params map[string]any) models.ActionResult {
	if !bulkVerbs[action] {
		return models.ActionResult{
			Address: address, Verb: action, Timestamp: time.Now(),
			Error: "unsupported bulk verb: " + action,
		}
	}

	parts := strings.SplitN(action, ".", 2)

	return g.ExecuteComponentAction(ctx, address, parts[0], parts[1], params)
}

// GetConfig fetches the device-wide configuration via Sys.GetConfig.
func (g *DeviceGateway) GetConfig(ctx context.Context, address string) (map[string]any, error) {
	raw, _, err := g.rpc.Call(ctx, address, methodGetConfig, nil, StatusTimeout, nil)
	if err != nil {
		return nil, err
	}

	var cfg map[string]any

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, shellyerr.Wrap(shellyerr.KindCommunication, "decoding config", err)
	}

	return cfg, nil
}

// SetConfig applies cfg via Sys.SetConfig.
func (g *DeviceGateway) SetConfig(ctx context.Context, address string, cfg map[string]any) error {
	_, _, err := g.rpc.Call(ctx, address, methodSetConfig, map[string]any{"config": cfg}, StatusTimeout, nil)
	return err
}

func outcomeFor(err error) models.Outcome {
	switch {
	case shellyerr.Is(err, shellyerr.KindAuthRequired):
		return models.OutcomeAuthRequired
	case shellyerr.Is(err, shellyerr.KindUnreachable):
		return models.OutcomeUnreachable
	default:
		return models.OutcomeError
	}
}

func hasComponentType(components []models.Component, ctype string) bool {
	for _, c := range components {
		if c.Type == ctype {
			return true
		}
	}

	return false
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}

	if v, ok := m[key]; ok {
		if sub, ok := v.(map[string]any); ok {
			return sub
		}
	}

	return nil
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}

	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}

func getBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}

	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}

	return false
}
