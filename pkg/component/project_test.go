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

package component_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/component"
)

func TestProject_Switch(t *testing.T) {
	status := map[string]any{
		"output": true,
		"apower": 42.5,
		"voltage": 230.1,
		"temperature": map[string]any{"tC": 35.2, "tF": 95.4},
	}
	config := map[string]any{"name": "Kitchen", "auto_on": true}

	v := component.Project("switch:0", status, config)

	sw, ok := v.(component.Switch)
	require.True(t, ok)
	assert.True(t, sw.Output)
	require.NotNil(t, sw.ActivePower)
	assert.InDelta(t, 42.5, *sw.ActivePower, 0.001)
	assert.Equal(t, "Kitchen", sw.Name)
	assert.True(t, sw.AutoOn)
}

func TestProject_UnknownTypeFallsBackToGeneric(t *testing.T) {
	v := component.Project("matter", map[string]any{"foo": "bar"}, nil)

	gen, ok := v.(component.Generic)
	require.True(t, ok)
	assert.Equal(t, "bar", gen.Status["foo"])
}

func TestProject_EMTotalsAndCoverDefaultState(t *testing.T) {
	em := component.Project("em:0", map[string]any{
		"a_act_power": 100.0,
		"b_act_power": 120.0,
		"c_act_power": 80.0,
		"total_act_power": 300.0,
	}, nil).(component.EM)

	require.NotNil(t, em.PhaseA.ActivePower)
	assert.InDelta(t, 100.0, *em.PhaseA.ActivePower, 0.001)
	require.NotNil(t, em.TotalActPower)
	assert.InDelta(t, 300.0, *em.TotalActPower, 0.001)

	cov := component.Project("cover:0", map[string]any{}, nil).(component.Cover)
	assert.Equal(t, component.CoverUnknown, cov.State)
}

func TestTotalPower_SumsAcrossSwitchesAndMeters(t *testing.T) {
	sw0Power := 10.0
	sw1Power := 20.0
	emPower := 300.0

	components := []any{
		component.Switch{ActivePower: &sw0Power},
		component.Switch{ActivePower: &sw1Power},
		component.EM{TotalActPower: &emPower},
		component.Generic{},
	}

	assert.InDelta(t, 330.0, component.TotalPower(components), 0.001)
}
