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

// Package mdnsdiscovery implements the external discover_device_ips
// boundary (spec §4.7/§6): resolving candidate device addresses via mDNS
// instead of target expansion.
package mdnsdiscovery

import (
	"context"
	"time"

	"github.com/hashicorp/mdns"

	"github.com/shellyops/shelly-manager/pkg/shellyerr"
)

// DefaultServiceTypes are the mDNS service names Shelly devices commonly
// advertise: the generic HTTP service record, and the Shelly-specific
// service record.
var DefaultServiceTypes = []string{"_http._tcp", "_shelly._tcp"}

// Discoverer resolves addresses by querying mDNS for one or more service
// types and collecting responder IPs.
type Discoverer struct {
	serviceTypes []string
	timeout      time.Duration
}

// New builds a Discoverer. serviceTypes defaults to DefaultServiceTypes when
// empty; timeout defaults to 3 seconds when zero.
func New(serviceTypes []string, timeout time.Duration) *Discoverer {
	if len(serviceTypes) == 0 {
		serviceTypes = DefaultServiceTypes
	}

	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Discoverer{serviceTypes: serviceTypes, timeout: timeout}
}

// DiscoverAddresses queries every configured service type and returns the
// deduplicated set of responder IPv4 addresses.
func (d *Discoverer) DiscoverAddresses(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	var addresses []string

	for _, service := range d.serviceTypes {
		entries := make(chan *mdns.ServiceEntry, 32)

		done := make(chan struct{})

		go func() {
			defer close(done)

			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}

				addr := entry.AddrV4.String()
				if !seen[addr] {
					seen[addr] = true
					addresses = append(addresses, addr)
				}
			}
		}()

		params := mdns.DefaultParams(service)
		params.Timeout = d.timeout
		params.Entries = entries

		if err := mdns.Query(params); err != nil {
			close(entries)
			<-done

			return nil, shellyerr.Wrap(shellyerr.KindCommunication, "mdns query failed for "+service, err)
		}

		close(entries)
		<-done

		if ctx.Err() != nil {
			return nil, shellyerr.Wrap(shellyerr.KindUnreachable, "mdns discovery cancelled", ctx.Err())
		}
	}

	return addresses, nil
}
