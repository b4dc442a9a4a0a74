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

package legacy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/legacy"
)

// TestMapComponents_Scenario reproduces spec §8 scenario 3: a legacy device
// whose shelly/status/settings payloads must merge into a sys component with
// available_updates.stable, and a switch:0 component named from settings.
func TestMapComponents_Scenario(t *testing.T) {
	shelly := map[string]any{"id": "shelly1-abc", "type": "SHSW-1", "fw": "v1.14.0"}
	status := map[string]any{
		"has_update": true,
		"relays":     []any{map[string]any{"ison": false}},
		"meters":     []any{map[string]any{"power": 0.0}},
	}
	settings := map[string]any{
		"device": map[string]any{"name": "Hallway"},
		"relays": []any{map[string]any{"name": "Main"}},
	}

	components := legacy.MapComponents(shelly, status, settings)

	var sysFound, swFound bool

	for _, c := range components {
		if c.Key == "sys" {
			sysFound = true
			updates, ok := c.Status["available_updates"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, updates, "stable")
		}

		if c.Key == "switch:0" {
			swFound = true
			assert.Equal(t, "Main", c.Config["name"])
			assert.Equal(t, false, c.Status["ison"])
			actions, ok := c.Attrs["legacy_actions"].([]string)
			require.True(t, ok)
			assert.Contains(t, actions, "Legacy.Toggle")
			assert.Contains(t, actions, "Legacy.TurnOn")
			assert.Contains(t, actions, "Legacy.TurnOff")
		}
	}

	assert.True(t, sysFound, "expected a sys component")
	assert.True(t, swFound, "expected a switch:0 component")
}

func TestMapComponents_NoWifiCloudMqttWhenAbsent(t *testing.T) {
	components := legacy.MapComponents(
		map[string]any{"id": "shelly1-abc"},
		map[string]any{},
		map[string]any{},
	)

	for _, c := range components {
		assert.NotEqual(t, "wifi", c.Type)
		assert.NotEqual(t, "cloud", c.Type)
		assert.NotEqual(t, "mqtt", c.Type)
	}
}
