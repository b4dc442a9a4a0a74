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

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scanMaxWorkers int
	scanUseMdns    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [targets...]",
	Short: "Discover Shelly devices across a set of targets",
	Long: `scan expands each target (a single address, a CIDR range, or an
address-address range) and probes every resulting address, reporting the
ones that look like live, reachable Shelly devices. Pass --mdns instead of
targets to discover addresses via mDNS.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanMaxWorkers, "max-workers", 0, "bounded concurrency (defaults to the scanner's configured value)")
	scanCmd.Flags().BoolVar(&scanUseMdns, "mdns", false, "resolve addresses via mDNS instead of expanding targets")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	results, err := a.scanner.Scan(context.Background(), args, scanMaxWorkers, scanUseMdns, nil)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return printResult(results)
}
