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

// Package models holds the data-model entities shared across the gateway,
// scanner, and bulk orchestrator: the wire-agnostic shapes each subsystem
// passes to the next. Nothing in this package performs I/O.
package models

import "time"

// Credential is a stored device credential, keyed by normalized hardware
// address (or the wildcard sentinel). The password is handled encrypted at
// rest by the concrete CredentialStore implementation; this struct holds the
// plaintext value once decrypted for use.
type Credential struct {
	Key         string `json:"key"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	LastSeenIP  string `json:"last_seen_ip,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Component is the raw, pre-projection shape of a device component: a
// key ("switch:0", "sys", "em:0", ...), its type tag, an optional numeric id,
// the raw status/config blobs as decoded JSON, a free-form attrs bag used by
// the legacy mapper to stash derived fields, and the action method names the
// device's method list grants it.
type Component struct {
	Key               string
	Type              string
	ID                int
	HasID             bool
	Status            map[string]any
	Config            map[string]any
	Attrs             map[string]any
	AvailableActions  []string
}

// DeviceInfo is the device-identity subset surfaced by both Discover and
// GetFullStatus.
type DeviceInfo struct {
	Name            string `json:"name,omitempty"`
	Model           string `json:"model,omitempty"`
	FirmwareID      string `json:"firmware_id,omitempty"`
	HardwareAddress string `json:"mac_address,omitempty"`
	AppName         string `json:"app_name,omitempty"`
	Generation      int    `json:"generation,omitempty"`
}

// DeviceSnapshot is the full per-device picture produced by GetFullStatus.
type DeviceSnapshot struct {
	Address      string
	Components   []Component
	ConfigRev    int
	Info         DeviceInfo
	LastUpdated  time.Time
	MethodList   []string
}

// ComponentByKey returns the component with the given key, or ok=false.
func (s *DeviceSnapshot) ComponentByKey(key string) (Component, bool) {
	for _, c := range s.Components {
		if c.Key == key {
			return c, true
		}
	}

	return Component{}, false
}

// Outcome classifies a single scanned address.
type Outcome string

const (
	OutcomeDetected         Outcome = "detected"
	OutcomeUpdateAvailable  Outcome = "update-available"
	OutcomeNoUpdateNeeded   Outcome = "no-update-needed"
	OutcomeAuthRequired     Outcome = "auth-required"
	OutcomeNotADevice       Outcome = "not-a-device"
	OutcomeUnreachable      Outcome = "unreachable"
	OutcomeError            Outcome = "error"
)

// DiscoveryResult is the per-address outcome of a discovery probe.
type DiscoveryResult struct {
	Address      string        `json:"address"`
	Outcome      Outcome       `json:"outcome"`
	DeviceID     string        `json:"device_id,omitempty"`
	DeviceType   string        `json:"device_type,omitempty"`
	DeviceName   string        `json:"device_name,omitempty"`
	FirmwareID   string        `json:"firmware_id,omitempty"`
	AuthRequired bool          `json:"auth_required,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// ActionResult is the outcome of a single component or device-wide action.
type ActionResult struct {
	Address       string    `json:"address"`
	Verb          string    `json:"verb"`
	ComponentKey  string    `json:"component_key,omitempty"`
	Success       bool      `json:"success"`
	Message       string    `json:"message,omitempty"`
	Error         string    `json:"error,omitempty"`
	Data          any       `json:"data,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// BulkResult aggregates the per-device ActionResults of one fan-out.
type BulkResult struct {
	Verb      string         `json:"verb"`
	Total     int            `json:"total"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []ActionResult `json:"results"`
	Duration  time.Duration  `json:"duration"`
}

// AddResult folds one per-device ActionResult into the aggregate.
func (b *BulkResult) AddResult(r ActionResult) {
	b.Results = append(b.Results, r)
	b.Total++

	if r.Success {
		b.Succeeded++
	} else {
		b.Failed++
	}
}
