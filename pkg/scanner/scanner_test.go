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

package scanner_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/scanner"
)

type fakeGateway struct {
	byAddress map[string]models.DiscoveryResult
	calls     int32
}

func (f *fakeGateway) Discover(_ context.Context, address string) models.DiscoveryResult {
	atomic.AddInt32(&f.calls, 1)
	return f.byAddress[address]
}

func TestScan_RejectsEmptyTargetsWithoutMdns(t *testing.T) {
	s := scanner.New(&fakeGateway{}, nil, nil)

	_, err := s.Scan(context.Background(), nil, 10, false, nil)
	require.Error(t, err)
}

func TestScan_FiltersNonPositiveOutcomes(t *testing.T) {
	gw := &fakeGateway{byAddress: map[string]models.DiscoveryResult{
		"192.168.1.1": {Address: "192.168.1.1", Outcome: models.OutcomeDetected},
		"192.168.1.2": {Address: "192.168.1.2", Outcome: models.OutcomeUnreachable},
		"192.168.1.3": {Address: "192.168.1.3", Outcome: models.OutcomeAuthRequired},
	}}

	s := scanner.New(gw, nil, nil)

	var progressed []models.Outcome

	results, err := s.Scan(context.Background(), []string{"192.168.1.1", "192.168.1.2", "192.168.1.3"}, 10, false,
		func(r models.DiscoveryResult) { progressed = append(progressed, r.Outcome) })
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "192.168.1.1", results[0].Address)
	assert.Len(t, progressed, 3)
}

func TestScan_RewritesAuthRequiredOnPositiveOutcomeAndDropsIt(t *testing.T) {
	gw := &fakeGateway{byAddress: map[string]models.DiscoveryResult{
		"192.168.1.1": {Address: "192.168.1.1", Outcome: models.OutcomeDetected, AuthRequired: true},
	}}

	s := scanner.New(gw, nil, nil)

	var progressed models.Outcome

	results, err := s.Scan(context.Background(), []string{"192.168.1.1"}, 10, false,
		func(r models.DiscoveryResult) { progressed = r.Outcome })
	require.NoError(t, err)
	assert.Empty(t, results, "auth-required is dropped from the returned list per spec")
	assert.Equal(t, models.OutcomeAuthRequired, progressed, "rewrite must be visible to the progress side channel")
}
