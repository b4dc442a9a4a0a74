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

package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shellyops/shelly-manager/pkg/shellyerr"
)

// LegacyHttpTransport issues GETs against Gen-legacy devices. Legacy devices
// never authenticate (spec §4.3).
type LegacyHttpTransport struct {
	client *http.Client
}

// NewLegacyHttpTransport builds a LegacyHttpTransport. client may be nil to
// use http.DefaultClient.
func NewLegacyHttpTransport(client *http.Client) *LegacyHttpTransport {
	if client == nil {
		client = http.DefaultClient
	}

	return &LegacyHttpTransport{client: client}
}

// Get requests endpoint on address with the given query params and returns
// the parsed JSON object when the body parses as one, or
// {"response": "<raw text>"} otherwise.
func (t *LegacyHttpTransport) Get(
	ctx context.Context, address, endpoint string, params url.Values, timeout time.Duration,
) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := "http://" + address + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, shellyerr.Wrap(shellyerr.KindValidation, "building legacy request", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, shellyerr.Wrap(shellyerr.KindUnreachable, "requesting "+endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, shellyerr.Wrap(shellyerr.KindUnreachable, "reading legacy response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, shellyerr.New(shellyerr.KindCommunication, "legacy endpoint returned status "+resp.Status)
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed, nil
	}

	return map[string]any{"response": string(body)}, nil
}
