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

// Package shellyerr defines the error taxonomy shared by every subsystem:
// transports, the gateway, the scanner, and the bulk orchestrator all turn
// their failures into a *shellyerr.Error of one of the Kinds below instead of
// leaking raw network or parsing errors across package boundaries.
package shellyerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure the way the caller needs to react to it, not by
// where in the stack it originated.
type Kind int

const (
	// KindValidation marks malformed input: bad target syntax, an unknown
	// component type, a missing required field. Never retried.
	KindValidation Kind = iota
	// KindUnreachable marks a network failure or timeout contacting a device.
	KindUnreachable
	// KindAuthRequired marks a 401 that survived credential resolution, or a
	// device with no stored credential at all.
	KindAuthRequired
	// KindCommunication marks a non-timeout protocol failure: a non-401/200
	// status, or a malformed response body.
	KindCommunication
	// KindUnsupportedAction marks a method absent from the device's method
	// list, or a legacy action with no mapping.
	KindUnsupportedAction
	// KindBulkOperation marks a failure to even start a fan-out (e.g. an
	// empty address list); it is never raised for an individual device.
	KindBulkOperation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnreachable:
		return "unreachable"
	case KindAuthRequired:
		return "auth_required"
	case KindCommunication:
		return "communication"
	case KindUnsupportedAction:
		return "unsupported_action"
	case KindBulkOperation:
		return "bulk_operation"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried across package boundaries in
// place of raw transport/parsing errors.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, so callers can
// do errors.Is(err, shellyerr.New(shellyerr.KindUnreachable, "")) — more
// commonly they use Is/As helpers below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return e.Kind == other.Kind
}

// New builds an *Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error carrying cause, preserving it for errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or anything it wraps) is a *Error of kind.
func Is(err error, kind Kind) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}

	return se.Kind == kind
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, with ok
// false otherwise.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if !errors.As(err, &se) {
		return 0, false
	}

	return se.Kind, true
}
