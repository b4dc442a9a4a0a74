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

// Package target expands heterogeneous target strings — single addresses,
// dash ranges, and CIDR blocks — into a deduplicated, ordered list of IPv4
// addresses. Expansion is a pure function: the same input list always
// produces the same output list, and a single malformed token aborts the
// whole expansion with an error naming the offending token.
package target

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/shellyops/shelly-manager/pkg/shellyerr"
)

// Expand turns targets into a deduplicated, first-occurrence-ordered list of
// IPv4 addresses. It returns a *shellyerr.Error of KindValidation on the
// first malformed token.
func Expand(targets []string) ([]string, error) {
	seen := make(map[string]struct{}, len(targets))

	var out []string

	add := func(ip string) {
		if _, ok := seen[ip]; ok {
			return
		}

		seen[ip] = struct{}{}
		out = append(out, ip)
	}

	for _, t := range targets {
		ips, err := expandOne(strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}

		for _, ip := range ips {
			add(ip)
		}
	}

	return out, nil
}

func expandOne(t string) ([]string, error) {
	switch {
	case strings.Contains(t, "/"):
		return expandCIDR(t)
	case strings.Contains(t, "-"):
		return expandRange(t)
	default:
		if !isDottedQuad(t) {
			return nil, invalidTarget(t)
		}

		return []string{t}, nil
	}
}

// expandRange handles both "A.B.C.D-A.B.C.E" and the short form
// "A.B.C.D-N" where N (0-255) replaces the last octet of the start address.
func expandRange(t string) ([]string, error) {
	startStr, endStr, _ := strings.Cut(t, "-")

	if !isDottedQuad(startStr) {
		return nil, invalidTarget(t)
	}

	var endFull string

	if n, err := strconv.Atoi(endStr); err == nil && !strings.Contains(endStr, ".") {
		if n < 0 || n > 255 {
			return nil, invalidTarget(t)
		}

		parts := strings.Split(startStr, ".")
		parts[3] = strconv.Itoa(n)
		endFull = strings.Join(parts, ".")
	} else {
		if !isDottedQuad(endStr) {
			return nil, invalidTarget(t)
		}

		endFull = endStr
	}

	startIP := net.ParseIP(startStr).To4()
	endIP := net.ParseIP(endFull).To4()

	startN := ipToUint32(startIP)
	endN := ipToUint32(endIP)

	if startN > endN {
		return nil, invalidRangeTarget(startStr, endFull)
	}

	ips := make([]string, 0, endN-startN+1)
	for n := startN; n <= endN; n++ {
		ips = append(ips, uint32ToIP(n).String())
	}

	return ips, nil
}

// expandCIDR expands a CIDR block. For prefix lengths <= 30 it excludes the
// network and broadcast addresses; for /31 and /32 it yields every address
// in the block.
func expandCIDR(t string) ([]string, error) {
	baseIP, ipnet, err := net.ParseCIDR(t)
	if err != nil {
		return nil, invalidTarget(t)
	}

	ones, _ := ipnet.Mask.Size()

	var ips []string

	for cur := baseIP.Mask(ipnet.Mask); ipnet.Contains(cur); incIP(cur) {
		if cur.To4() != nil && ones <= 30 {
			if cur.Equal(ipnet.IP) || isBroadcast(cur, ipnet) {
				continue
			}
		}

		ips = append(ips, cur.String())
	}

	return ips, nil
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}

func isBroadcast(ip net.IP, ipnet *net.IPNet) bool {
	broadcast := make(net.IP, len(ip))
	for i := range ip {
		broadcast[i] = ipnet.IP[i] | ^ipnet.Mask[i]
	}

	return ip.Equal(broadcast)
}

func isDottedQuad(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	ip := net.ParseIP(s)

	return ip != nil && ip.To4() != nil
}

func ipToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func uint32ToIP(n uint32) net.IP {
	return net.IPv4(byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

func invalidTarget(t string) error {
	return shellyerr.New(shellyerr.KindValidation, fmt.Sprintf("invalid target %q", t))
}

func invalidRangeTarget(start, end string) error {
	return shellyerr.New(shellyerr.KindValidation,
		fmt.Sprintf("invalid range: start %q is after end %q", start, end))
}
