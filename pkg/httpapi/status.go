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

package httpapi

import (
	"net/http"

	"github.com/shellyops/shelly-manager/pkg/shellyerr"
)

// StatusFor maps a shellyerr.Kind to the HTTP status code the API boundary
// reports it as.
func StatusFor(err error) int {
	kind, ok := shellyerr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case shellyerr.KindValidation:
		return http.StatusBadRequest
	case shellyerr.KindUnreachable:
		return http.StatusBadGateway
	case shellyerr.KindAuthRequired:
		return http.StatusUnauthorized
	case shellyerr.KindCommunication:
		return http.StatusBadGateway
	case shellyerr.KindUnsupportedAction:
		return http.StatusNotFound
	case shellyerr.KindBulkOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
