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

package target_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/shellyerr"
	"github.com/shellyops/shelly-manager/pkg/target"
)

func TestExpand_MixedList(t *testing.T) {
	out, err := target.Expand([]string{
		"192.168.1.1",
		"192.168.1.10-12",
		"192.168.1.0/30",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"192.168.1.1",
		"192.168.1.10",
		"192.168.1.11",
		"192.168.1.12",
		"192.168.1.2",
	}, out)
}

func TestExpand_ShortFormEqualsFullForm(t *testing.T) {
	short, err := target.Expand([]string{"10.0.0.4-7"})
	require.NoError(t, err)

	full, err := target.Expand([]string{"10.0.0.4-10.0.0.7"})
	require.NoError(t, err)

	assert.Equal(t, full, short)
}

func TestExpand_CIDRBoundaries(t *testing.T) {
	cases := []struct {
		cidr string
		want int
	}{
		{"10.0.0.5/32", 1},
		{"10.0.0.4/31", 2},
		{"10.0.0.0/30", 2},
		{"10.0.0.0/24", 254},
	}

	for _, tc := range cases {
		out, err := target.Expand([]string{tc.cidr})
		require.NoError(t, err, tc.cidr)
		assert.Len(t, out, tc.want, tc.cidr)
	}
}

func TestExpand_InvalidRangeNamesBothEndpoints(t *testing.T) {
	_, err := target.Expand([]string{"192.168.1.10-5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "192.168.1.10")
	assert.Contains(t, err.Error(), "192.168.1.5")
	assert.True(t, shellyerr.Is(err, shellyerr.KindValidation))
}

func TestExpand_InvalidDottedQuads(t *testing.T) {
	for _, bad := range []string{"256.1.1.1", "1.2.3", "1.2.3.4.5", "not-an-ip"} {
		_, err := target.Expand([]string{bad})
		require.Error(t, err, bad)
		assert.True(t, shellyerr.Is(err, shellyerr.KindValidation), bad)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	first, err := target.Expand([]string{"10.0.0.1", "10.0.0.0/30"})
	require.NoError(t, err)

	second, err := target.Expand(first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExpand_Deduplicates(t *testing.T) {
	out, err := target.Expand([]string{"10.0.0.1", "10.0.0.1", "10.0.0.0/30"})
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, ip := range out {
		seen[ip]++
	}

	for ip, count := range seen {
		assert.Equal(t, 1, count, "duplicate %s", ip)
	}
}
