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

import (
	"strconv"
	"strings"
)

// ParseComponentKey splits a component key of the form "type:id" (e.g.
// "switch:0") into its lowercase type and numeric id. Keys with no colon
// (e.g. "sys", "cloud", "zigbee") have no id; hasID reports whether an id was
// present and parsed.
func ParseComponentKey(key string) (componentType string, id int, hasID bool) {
	typ, idStr, found := strings.Cut(key, ":")
	if !found {
		return strings.ToLower(typ), 0, false
	}

	n, err := strconv.Atoi(idStr)
	if err != nil {
		return strings.ToLower(typ), 0, false
	}

	return strings.ToLower(typ), n, true
}

// ComponentKey reconstructs a "type:id" key, or just "type" when hasID is
// false.
func ComponentKey(componentType string, id int, hasID bool) string {
	if !hasID {
		return componentType
	}

	return componentType + ":" + strconv.Itoa(id)
}
