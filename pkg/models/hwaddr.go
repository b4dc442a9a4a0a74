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

package models

import "strings"

// WildcardCredentialKey is the sentinel credential key that matches any
// device with no device-specific credential entry.
const WildcardCredentialKey = "*"

// NormalizeHardwareAddress upper-cases a hardware (MAC) address and strips
// any ':'/'-' separators, so "AA:BB:…", "aa-bb-…", and "aabbcc…" all collapse
// to the same 12-character key. The wildcard sentinel passes through
// unchanged. Normalization is idempotent: NormalizeHardwareAddress is a
// projection, not a transform that can diverge on repeated application.
func NormalizeHardwareAddress(addr string) string {
	if addr == WildcardCredentialKey {
		return addr
	}

	var b strings.Builder

	b.Grow(len(addr))

	for _, r := range addr {
		if r == ':' || r == '-' {
			continue
		}

		b.WriteRune(r)
	}

	return strings.ToUpper(b.String())
}
