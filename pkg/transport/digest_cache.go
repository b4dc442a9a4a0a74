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

import "sync"

// digestCache maps a normalized hardware address (or bare IP, before the
// hardware address is known) to its cached digestAuth instance. Read-before-
// write-if-absent is acceptable per spec §5: two concurrent first-use calls
// may each construct an instance; the last Set wins and the other is
// orphaned harmlessly.
type digestCache struct {
	mu    sync.Mutex
	byKey map[string]*digestAuth
}

func newDigestCache() *digestCache {
	return &digestCache{byKey: make(map[string]*digestAuth)}
}

func (c *digestCache) get(key string) *digestAuth {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.byKey[key]
}

func (c *digestCache) set(key string, d *digestAuth) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byKey[key] = d
}

// invalidate drops the cached instance for key, e.g. after a credential
// update/delete or a failed retry.
func (c *digestCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.byKey, key)
}
