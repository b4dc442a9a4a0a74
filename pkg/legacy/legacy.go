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

// Package legacy maps the three payloads a Gen-1 ("legacy") Shelly device
// exposes over plain HTTP GET (shelly, status, settings) into the same
// component-shaped model the modern RPC path produces, so the gateway can
// treat both device families identically past discovery (spec §4.5).
package legacy

import (
	"strconv"

	"github.com/shellyops/shelly-manager/pkg/component"
	"github.com/shellyops/shelly-manager/pkg/models"
)

// legacyActions maps a legacy component type to the canonical fixed set of
// HTTP-GET action names it supports, matching gateway.legacyEndpointFor's own
// mapping table exactly so an emitted component never advertises an action
// the gateway would reject as unsupported.
var legacyActions = map[string][]string{
	"switch": {"Legacy.Toggle", "Legacy.TurnOn", "Legacy.TurnOff"},
	"cover":  {"Legacy.Open", "Legacy.Close", "Legacy.Stop"},
	"input": {
		"Legacy.InputMomentary", "Legacy.InputToggle", "Legacy.InputEdge",
		"Legacy.InputDetached", "Legacy.InputActivation", "Legacy.InputMomentaryRelease",
		"Legacy.InputReverse", "Legacy.InputNormal",
	},
}

// MapComponents projects the shelly/status/settings payloads of one legacy
// device into a flat list of models.Component, mirroring the modern
// DeviceSnapshot.Components shape.
func MapComponents(shelly, status, settings map[string]any) []models.Component {
	var out []models.Component

	out = append(out, mapSystem(shelly, status, settings))

	if wifi := mapWifi(status); wifi != nil {
		out = append(out, *wifi)
	}

	if cloud := mapCloud(status, settings); cloud != nil {
		out = append(out, *cloud)
	}

	if mqtt := mapMQTT(status, settings); mqtt != nil {
		out = append(out, *mqtt)
	}

	out = append(out, mapSwitches(status, settings)...)
	out = append(out, mapInputs(status)...)
	out = append(out, mapCovers(status, settings)...)

	return out
}

func legacyAttrs(componentType string, id int, hasID bool) map[string]any {
	return map[string]any{
		"legacy_component": true,
		"legacy_id":        id,
		"legacy_actions":   legacyActions[componentType],
	}
}

func mapSystem(shelly, status, settings map[string]any) models.Component {
	device := getMap(settings, "device")
	update := getMap(status, "update")

	updates := map[string]any{}

	hasUpdate := getBool(update, "has_update") || getBool(status, "has_update")
	newVer := getString(update, "new_version")
	oldVer := getString(update, "old_version")

	if hasUpdate || (newVer != "" && newVer != oldVer) {
		updates["stable"] = map[string]any{"version": newVer}
	}

	if beta := getString(update, "beta_version"); beta != "" {
		updates["beta"] = map[string]any{"version": beta}
	}

	mergedStatus := component.MergeMaps(status, map[string]any{
		"available_updates": updates,
		"mac":               getString(shelly, "mac"),
		"fw_id":             getString(shelly, "fw"),
	})

	return models.Component{
		Key:    "sys",
		Type:   "sys",
		Status: mergedStatus,
		Config: map[string]any{"device": device},
		Attrs:  legacyAttrs("sys", 0, false),
	}
}

func mapWifi(status map[string]any) *models.Component {
	sta := getMap(status, "wifi_sta")
	if sta == nil {
		return nil
	}

	return &models.Component{
		Key:    "wifi",
		Type:   "wifi",
		Status: sta,
		Attrs:  legacyAttrs("wifi", 0, false),
	}
}

func mapCloud(status, settings map[string]any) *models.Component {
	cloudStatus := getMap(status, "cloud")
	cloudSettings := getMap(settings, "cloud")

	if cloudStatus == nil && cloudSettings == nil {
		return nil
	}

	return &models.Component{
		Key:    "cloud",
		Type:   "cloud",
		Status: cloudStatus,
		Config: cloudSettings,
		Attrs:  legacyAttrs("cloud", 0, false),
	}
}

func mapMQTT(status, settings map[string]any) *models.Component {
	mqttSettings := getMap(settings, "mqtt")
	if mqttSettings == nil {
		return nil
	}

	return &models.Component{
		Key:    "mqtt",
		Type:   "mqtt",
		Status: getMap(status, "mqtt"),
		Config: mqttSettings,
		Attrs:  legacyAttrs("mqtt", 0, false),
	}
}

func mapSwitches(status, settings map[string]any) []models.Component {
	relays := getSlice(status, "relays")
	meters := getSlice(status, "meters")
	settingsRelays := getSlice(settings, "relays")

	var out []models.Component

	for i, relay := range relays {
		var meter, settingsRelay map[string]any
		if i < len(meters) {
			meter = meters[i]
		}
		if i < len(settingsRelays) {
			settingsRelay = settingsRelays[i]
		}

		merged := component.MergeMaps(relay, meter)
		cfg := settingsRelay

		temp := resolveRelayTemperature(relay, status)

		key := "switch:" + strconv.Itoa(i)

		out = append(out, models.Component{
			Key:    key,
			Type:   "switch",
			ID:     i,
			HasID:  true,
			Status: component.MergeMaps(merged, map[string]any{"temperature": temp}),
			Config: cfg,
			Attrs:  legacyAttrs("switch", i, true),
		})
	}

	return out
}

// resolveRelayTemperature applies the fallback chain from spec §4.5: the
// relay's own numeric temperature reading (°C, with °F derived), else
// status.tmp.tC, else status.temperature.
func resolveRelayTemperature(relay, status map[string]any) map[string]any {
	if v, ok := relay["temperature"]; ok {
		if tC, ok := v.(float64); ok {
			return map[string]any{"tC": tC, "tF": tC*9/5 + 32}
		}
	}

	if tmp := getMap(status, "tmp"); tmp != nil {
		if tC, ok := tmp["tC"].(float64); ok {
			return map[string]any{"tC": tC, "tF": tC*9/5 + 32}
		}
	}

	if tC, ok := status["temperature"].(float64); ok {
		return map[string]any{"tC": tC, "tF": tC*9/5 + 32}
	}

	return nil
}

func mapInputs(status map[string]any) []models.Component {
	inputs := getSlice(status, "inputs")
	if inputs == nil {
		inputs = getSlice(status, "input")
	}

	var out []models.Component

	for i, in := range inputs {
		out = append(out, models.Component{
			Key:    "input:" + strconv.Itoa(i),
			Type:   "input",
			ID:     i,
			HasID:  true,
			Status: in,
			Attrs:  legacyAttrs("input", i, true),
		})
	}

	return out
}

func mapCovers(status, settings map[string]any) []models.Component {
	rollers := getSlice(status, "rollers")
	settingsRollers := getSlice(settings, "rollers")

	var out []models.Component

	for i, roller := range rollers {
		var cfg map[string]any
		if i < len(settingsRollers) {
			cfg = settingsRollers[i]
		}

		out = append(out, models.Component{
			Key:    "cover:" + strconv.Itoa(i),
			Type:   "cover",
			ID:     i,
			HasID:  true,
			Status: roller,
			Config: cfg,
			Attrs:  legacyAttrs("cover", i, true),
		})
	}

	return out
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

func getSlice(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}

	v, ok := m[key]
	if !ok {
		return nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(list))

	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		} else {
			out = append(out, nil)
		}
	}

	return out
}
