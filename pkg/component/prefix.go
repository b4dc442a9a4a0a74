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

// Package component implements the tagged union of device component
// variants (spec §4.4): one projector per component type that turns a raw
// status+config blob into typed fields, plus the shared available-actions
// computation every variant shares.
package component

import "strings"

// apiPrefixes is the canonical capitalization table from spec §4.6 used to
// build modern RPC method names (<Prefix>.<Action>) from a lowercase
// component type.
var apiPrefixes = map[string]string{
	"switch":      "Switch",
	"input":       "Input",
	"cover":       "Cover",
	"sys":         "Sys",
	"cloud":       "Cloud",
	"shelly":      "Shelly",
	"schedule":    "Schedule",
	"webhook":     "Webhook",
	"kvs":         "KVS",
	"script":      "Script",
	"wifi":        "Wifi",
	"ws":          "WS",
	"eth":         "Eth",
	"http":        "HTTP",
	"ble":         "BLE",
	"bthome":      "BTHome",
	"mqtt":        "Mqtt",
	"knx":         "KNX",
	"zigbee":      "Zigbee",
	"matter":      "Matter",
	"modbus":      "Modbus",
	"dali":        "DALI",
	"em":          "EM",
	"em1":         "EM1",
	"pm1":         "PM1",
	"devicepower": "DevicePower",
	"ui":          "UI",
	"temperature": "Temperature",
	"humidity":    "Humidity",
	"voltmeter":   "Voltmeter",
	"smoke":       "Smoke",
	"light":       "Light",
	"rgb":         "RGB",
	"rgbw":        "RGBW",
	"cct":         "CCT",
}

// APIPrefix returns the canonical RPC method prefix for a lowercase
// component type. Unknown types default to a title-cased form of the type.
func APIPrefix(componentType string) string {
	if prefix, ok := apiPrefixes[strings.ToLower(componentType)]; ok {
		return prefix
	}

	return titleCase(componentType)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// AvailableActions returns the subset of methodList whose names are prefixed
// by "<Prefix>." for componentType's canonical prefix. For system components
// every "Shelly."-prefixed method is included as well (covering the
// device-wide verbs Reboot, Update, FactoryReset), per spec §4.4.
func AvailableActions(componentType string, methodList []string) []string {
	prefix := APIPrefix(componentType) + "."

	var out []string

	for _, m := range methodList {
		if strings.HasPrefix(m, prefix) {
			out = append(out, m)
		}
	}

	if strings.EqualFold(componentType, "sys") {
		for _, m := range methodList {
			if strings.HasPrefix(m, "Shelly.") {
				out = append(out, m)
			}
		}
	}

	return out
}

// CanPerformAction reports whether name is available on a component of
// componentType given its availableActions list. System components
// recognize both "Sys.<name>" and "Shelly.<name>" forms.
func CanPerformAction(componentType, name string, availableActions []string) bool {
	candidates := []string{APIPrefix(componentType) + "." + name}

	if strings.EqualFold(componentType, "sys") {
		candidates = append(candidates, "Shelly."+name)
	}

	for _, c := range candidates {
		for _, a := range availableActions {
			if a == c {
				return true
			}
		}
	}

	return false
}
