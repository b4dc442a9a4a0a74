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

package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/credential"
	"github.com/shellyops/shelly-manager/pkg/gateway"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/transport"
)

type memStore struct{}

func (m *memStore) ListAll(context.Context) ([]models.Credential, error) { return nil, nil }
func (m *memStore) Get(context.Context, string) (*models.Credential, error) {
	return nil, credential.ErrNotFound
}
func (m *memStore) Set(context.Context, string, string, string, string) error { return nil }
func (m *memStore) Delete(context.Context, string) error                     { return nil }

// TestExecuteComponentAction_MethodNotListedFailsFast reproduces spec §8
// scenario 5: a method absent from the device's method list fails without
// attempting the call.
func TestExecuteComponentAction_MethodNotListedFailsFast(t *testing.T) {
	var callCount int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"methods":["Switch.Toggle","Switch.GetStatus"]}}`))
	}))
	defer srv.Close()

	rpc := transport.NewRpcTransport(srv.Client(), &memStore{}, credential.NewAuthStateCache(0), nil)
	legacyT := transport.NewLegacyHttpTransport(srv.Client())
	gw := gateway.New(rpc, legacyT, nil)

	result := gw.ExecuteComponentAction(context.Background(), srv.Listener.Addr().String(), "zigbee:0", "GetStatus", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Zigbee.GetStatus")
	assert.Equal(t, 1, callCount, "only the method-list lookup call should have been made")
}

func TestBulkAction_RejectsNonDeviceWideVerb(t *testing.T) {
	rpc := transport.NewRpcTransport(nil, &memStore{}, credential.NewAuthStateCache(0), nil)
	legacyT := transport.NewLegacyHttpTransport(nil)
	gw := gateway.New(rpc, legacyT, nil)

	result := gw.BulkAction(context.Background(), "10.0.0.1", "switch.Toggle", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported bulk verb")
}

func TestExecuteLegacyAction_UnsupportedCombinationFailsWithoutCall(t *testing.T) {
	var called bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rpc := transport.NewRpcTransport(srv.Client(), &memStore{}, credential.NewAuthStateCache(0), nil)
	legacyT := transport.NewLegacyHttpTransport(srv.Client())
	gw := gateway.New(rpc, legacyT, nil)

	result := gw.ExecuteComponentAction(context.Background(), srv.Listener.Addr().String(), "sys", "Legacy.Frobnicate", nil)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "Unsupported legacy action")
	assert.False(t, called)
}

func TestDiscover_Unreachable(t *testing.T) {
	rpc := transport.NewRpcTransport(nil, &memStore{}, credential.NewAuthStateCache(0), nil)
	legacyT := transport.NewLegacyHttpTransport(nil)
	gw := gateway.New(rpc, legacyT, nil)

	result := gw.Discover(context.Background(), "127.0.0.1:1")
	require.Equal(t, models.OutcomeUnreachable, result.Outcome)
	assert.NotZero(t, result.ResponseTime)
}
