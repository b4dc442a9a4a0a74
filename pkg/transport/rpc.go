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

// Package transport implements the two device-facing wire protocols: the
// modern JSON-RPC dialect (RpcTransport) and the legacy HTTP/GET dialect
// (LegacyHttpTransport). Both turn network/HTTP facts into the shellyerr
// taxonomy; neither leaks a raw net/http error to its caller.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shellyops/shelly-manager/pkg/credential"
	"github.com/shellyops/shelly-manager/pkg/logger"
	"github.com/shellyops/shelly-manager/pkg/models"
	"github.com/shellyops/shelly-manager/pkg/shellyerr"
)

// MethodGetDeviceInfo is the well-known unauthenticated discovery method,
// referenced specially by the auth-challenge flow below.
const MethodGetDeviceInfo = "Shelly.GetDeviceInfo"

type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// RpcTransport submits JSON-RPC calls to Gen-modern devices, handling a
// single 401-challenge-then-retry cycle per spec §4.2.
type RpcTransport struct {
	client      *http.Client
	credStore   credential.Store
	authCache   *credential.AuthStateCache
	digestCache *digestCache
	log         logger.Logger

	mu         sync.Mutex
	hwByAddr   map[string]string
}

// NewRpcTransport builds an RpcTransport. client may be nil to use
// http.DefaultClient.
func NewRpcTransport(client *http.Client, store credential.Store, authCache *credential.AuthStateCache, log logger.Logger) *RpcTransport {
	if client == nil {
		client = http.DefaultClient
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &RpcTransport{
		client:      client,
		credStore:   store,
		authCache:   authCache,
		digestCache: newDigestCache(),
		log:         log.WithComponent("rpc_transport"),
		hwByAddr:    make(map[string]string),
	}
}

// InvalidateCredential drops any cached digest-auth instance for key
// (a normalized hardware address, or the wildcard). Call this whenever the
// credential store's Set/Delete touch that key.
func (t *RpcTransport) InvalidateCredential(key string) {
	t.digestCache.invalidate(models.NormalizeHardwareAddress(key))
}

// RequiresAuth reports whether address (or its known hardware address) is
// recorded in the auth-state cache as having required a digest challenge.
// The scanner uses this to rewrite an otherwise-positive outcome to
// auth-required (spec §4.7).
func (t *RpcTransport) RequiresAuth(address string) bool {
	if t.authCache.RequiresAuth(address) {
		return true
	}

	if hw := t.cachedHWAddress(address); hw != "" {
		return t.authCache.RequiresAuth(hw)
	}

	return false
}

func (t *RpcTransport) cachedHWAddress(address string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.hwByAddr[address]
}

func (t *RpcTransport) rememberHWAddress(address, hw string) {
	if hw == "" {
		return
	}

	t.mu.Lock()
	t.hwByAddr[address] = hw
	t.mu.Unlock()
}

// Call submits method/params to address and returns the decoded result plus
// the total wall-clock elapsed (including any auth retry). explicitCred, if
// non-nil, is used for basic auth in place of any stored/digest credential.
func (t *RpcTransport) Call(
	ctx context.Context,
	address, method string,
	params any,
	timeout time.Duration,
	explicitCred *models.Credential,
) (json.RawMessage, time.Duration, error) {
	start := time.Now()
	body, err := json.Marshal(rpcRequest{ID: uuid.NewString(), Method: method, Params: params})
	if err != nil {
		return nil, time.Since(start), shellyerr.Wrap(shellyerr.KindValidation, "encoding rpc request", err)
	}

	authKey := t.cachedHWAddress(address)
	if authKey == "" {
		authKey = address
	}

	var authHeader string

	usedAuth := false

	switch {
	case explicitCred != nil:
		authHeader = basicAuthHeader(explicitCred.Username, explicitCred.Password)
		usedAuth = true
	case t.authCache.RequiresAuth(address) || t.authCache.RequiresAuth(authKey):
		if da := t.digestCache.get(authKey); da != nil && da.hasChallenge() {
			authHeader = da.authorizationHeader(http.MethodPost, "/rpc")
			usedAuth = true
		}
	}

	status, respBody, challengeHeader, err := t.postWithHeader(ctx, address, body, authHeader, timeout)
	if err != nil {
		return nil, time.Since(start), shellyerr.Wrap(shellyerr.KindUnreachable, "calling "+method, err)
	}

	if status == http.StatusOK {
		result, perr := parseRPCResult(respBody)
		if perr != nil {
			return nil, time.Since(start), shellyerr.Wrap(shellyerr.KindCommunication, "parsing rpc response", perr)
		}

		return result, time.Since(start), nil
	}

	if status != http.StatusUnauthorized {
		return nil, time.Since(start), shellyerr.New(shellyerr.KindCommunication,
			fmt.Sprintf("unexpected status %d calling %s", status, method))
	}

	if usedAuth {
		t.digestCache.invalidate(authKey)
		return nil, time.Since(start), shellyerr.New(shellyerr.KindAuthRequired, "credentials rejected")
	}

	// Challenge path: exactly one retry, per spec §4.2 step 4. The
	// WWW-Authenticate header from the 401 we already received is reused
	// directly — no extra probe request is issued for it.
	return t.handleChallenge(ctx, address, method, body, challengeHeader, timeout, start)
}

func (t *RpcTransport) handleChallenge(
	ctx context.Context,
	address, method string,
	body []byte,
	challengeHeader string,
	timeout time.Duration,
	start time.Time,
) (json.RawMessage, time.Duration, error) {
	hw := t.cachedHWAddress(address)

	authKey := hw
	if authKey == "" {
		authKey = address
	}

	cred, cerr := t.resolveCredential(ctx, authKey)
	if cerr != nil {
		return nil, time.Since(start), shellyerr.Wrap(shellyerr.KindAuthRequired, "no credential available", cerr)
	}

	da := t.digestCache.get(authKey)
	if da == nil {
		da = newDigestAuth(cred.Username, cred.Password)
	}

	da.applyChallenge(challengeHeader)

	t.authCache.MarkRequired(address)

	if hw != "" {
		t.authCache.MarkRequired(hw)
	}

	t.digestCache.set(authKey, da)

	authHeader := da.authorizationHeader(http.MethodPost, "/rpc")

	status2, respBody2, err2 := t.post(ctx, address, body, authHeader, timeout)
	if err2 != nil {
		return nil, time.Since(start), shellyerr.Wrap(shellyerr.KindUnreachable, "calling "+method, err2)
	}

	if status2 == http.StatusOK {
		if hw == "" {
			if info, derr := extractMAC(respBody2, method); derr == nil && info != "" {
				t.rememberHWAddress(address, info)
				t.authCache.MarkRequired(info)
			}
		}

		result, perr := parseRPCResult(respBody2)
		if perr != nil {
			return nil, time.Since(start), shellyerr.Wrap(shellyerr.KindCommunication, "parsing rpc response", perr)
		}

		return result, time.Since(start), nil
	}

	t.digestCache.invalidate(authKey)

	return nil, time.Since(start), shellyerr.New(shellyerr.KindAuthRequired, "auth failed after retry")
}

func (t *RpcTransport) resolveCredential(ctx context.Context, key string) (*models.Credential, error) {
	if t.credStore == nil {
		return nil, shellyerr.New(shellyerr.KindAuthRequired, "no credential store configured")
	}

	return t.credStore.Get(ctx, key)
}

func (t *RpcTransport) post(ctx context.Context, address string, body []byte, authHeader string, timeout time.Duration) (int, []byte, error) {
	req, cancel, err := t.newRequest(ctx, address, body, authHeader, timeout)
	if err != nil {
		return 0, nil, err
	}
	defer cancel()

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}

// postWithHeader is identical to post but also returns the response's
// WWW-Authenticate header, so a 401 challenge can be consumed without a
// second request.
func (t *RpcTransport) postWithHeader(
	ctx context.Context, address string, body []byte, authHeader string, timeout time.Duration,
) (int, []byte, string, error) {
	req, cancel, err := t.newRequest(ctx, address, body, authHeader, timeout)
	if err != nil {
		return 0, nil, "", err
	}
	defer cancel()

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", err
	}

	return resp.StatusCode, respBody, resp.Header.Get("WWW-Authenticate"), nil
}

func (t *RpcTransport) newRequest(
	ctx context.Context, address string, body []byte, authHeader string, timeout time.Duration,
) (*http.Request, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+address+"/rpc", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	return req, cancel, nil
}

func basicAuthHeader(username, password string) string {
	req := &http.Request{Header: http.Header{}}
	req.SetBasicAuth(username, password)

	return req.Header.Get("Authorization")
}

// parseRPCResult accepts either {"result": ...} or a bare result object, per
// spec §4.2.
func parseRPCResult(body []byte) (json.RawMessage, error) {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Result != nil {
		return envelope.Result, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, err
	}

	return json.RawMessage(body), nil
}

func extractMAC(body []byte, method string) (string, error) {
	if method != MethodGetDeviceInfo {
		return "", shellyerr.New(shellyerr.KindCommunication, "mac extraction only valid for GetDeviceInfo")
	}

	result, err := parseRPCResult(body)
	if err != nil {
		return "", err
	}

	var info struct {
		MAC string `json:"mac"`
	}

	if err := json.Unmarshal(result, &info); err != nil {
		return "", err
	}

	return info.MAC, nil
}
