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

package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/credential"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/shellyerr"
	"github.com/shellyops/shelly-manager/pkg/transport"
)

type memStore struct {
	creds map[string]models.Credential
}

func (m *memStore) ListAll(context.Context) ([]models.Credential, error) { return nil, nil }

func (m *memStore) Get(_ context.Context, key string) (*models.Credential, error) {
	norm := models.NormalizeHardwareAddress(key)
	if c, ok := m.creds[norm]; ok {
		return &c, nil
	}

	if c, ok := m.creds[models.WildcardCredentialKey]; ok {
		return &c, nil
	}

	return nil, credential.ErrNotFound
}

func (m *memStore) Set(_ context.Context, key, username, password, _ string) error {
	m.creds[models.NormalizeHardwareAddress(key)] = models.Credential{Username: username, Password: password}
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.creds, models.NormalizeHardwareAddress(key))
	return nil
}

// TestCall_AuthChallengeRetriesExactlyOnce reproduces spec §8 scenario 2: a
// device challenges the initial Shelly.GetDeviceInfo with a 401, and the
// transport must retry exactly once with digest auth derived from the
// stored credential.
func TestCall_AuthChallengeRetriesExactlyOnce(t *testing.T) {
	var requestCount int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requestCount, 1)

		if r.Header.Get("Authorization") == "" {
			w.Header().Set("WWW-Authenticate", `Digest realm="shelly", nonce="abc123", qop="auth"`)
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		assert.Equal(t, int32(2), n, "auth header must only appear on the second request")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"mac":"AABBCCDDEEFF","id":"shellyplus1-abc"}}`))
	}))
	defer srv.Close()

	store := &memStore{creds: map[string]models.Credential{
		"AABBCCDDEEFF": {Username: "admin", Password: "secret"},
	}}
	authCache := credential.NewAuthStateCache(0)

	tr := transport.NewRpcTransport(srv.Client(), store, authCache, nil)

	addr := srv.Listener.Addr().String()

	result, _, err := tr.Call(context.Background(), addr, transport.MethodGetDeviceInfo, nil, time.Second, nil)
	require.NoError(t, err)

	var info struct {
		MAC string `json:"mac"`
	}
	require.NoError(t, json.Unmarshal(result, &info))
	assert.Equal(t, "AABBCCDDEEFF", info.MAC)

	assert.Equal(t, int32(2), atomic.LoadInt32(&requestCount), "exactly two HTTP requests for one challenged call")
	assert.True(t, authCache.RequiresAuth(addr))
	assert.True(t, authCache.RequiresAuth("AABBCCDDEEFF"))
}

func TestCall_Success_NoAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"ison":true}}`))
	}))
	defer srv.Close()

	tr := transport.NewRpcTransport(srv.Client(), &memStore{creds: map[string]models.Credential{}}, credential.NewAuthStateCache(0), nil)

	result, _, err := tr.Call(context.Background(), srv.Listener.Addr().String(), "Switch.GetStatus", map[string]any{"id": 0}, time.Second, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ison":true}`, string(result))
}

func TestCall_AuthRequiredAfterFailedRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", `Digest realm="shelly", nonce="abc123", qop="auth"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := &memStore{creds: map[string]models.Credential{"*": {Username: "admin", Password: "wrong"}}}

	tr := transport.NewRpcTransport(srv.Client(), store, credential.NewAuthStateCache(0), nil)

	_, _, err := tr.Call(context.Background(), srv.Listener.Addr().String(), "Switch.Toggle", map[string]any{"id": 0}, time.Second, nil)
	require.Error(t, err)
	assert.True(t, shellyerr.Is(err, shellyerr.KindAuthRequired))
}

func TestCall_Unreachable(t *testing.T) {
	tr := transport.NewRpcTransport(nil, &memStore{creds: map[string]models.Credential{}}, credential.NewAuthStateCache(0), nil)

	_, _, err := tr.Call(context.Background(), "127.0.0.1:1", "Shelly.GetStatus", nil, 200*time.Millisecond, nil)
	require.Error(t, err)
	assert.True(t, shellyerr.Is(err, shellyerr.KindUnreachable))
}

func TestCall_CommunicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := transport.NewRpcTransport(srv.Client(), &memStore{creds: map[string]models.Credential{}}, credential.NewAuthStateCache(0), nil)

	_, _, err := tr.Call(context.Background(), srv.Listener.Addr().String(), "Shelly.GetStatus", nil, time.Second, nil)
	require.Error(t, err)
	assert.True(t, shellyerr.Is(err, shellyerr.KindCommunication))
}
