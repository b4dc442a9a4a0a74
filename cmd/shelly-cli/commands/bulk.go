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
	"os"

	"github.com/spf13/cobra"
)

var bulkUpdateChannel string

var bulkScanCmd = &cobra.Command{
	Use:   "bulk-scan <address...>",
	Short: "Discover a known population of devices, in parallel, without expanding targets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		return printResult(a.bulk.BulkScan(context.Background(), args, progressPrinter()))
	},
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "bulk-update <address...>",
	Short: "Trigger a firmware update across many devices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		result := a.bulk.BulkUpdate(context.Background(), args, bulkUpdateChannel, progressPrinter())

		return printResult(result)
	},
}

func init() {
	bulkUpdateCmd.Flags().StringVar(&bulkUpdateChannel, "channel", "stable", "firmware channel (stable|beta)")
}

var bulkRebootCmd = &cobra.Command{
	Use:   "bulk-reboot <address...>",
	Short: "Reboot many devices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		return printResult(a.bulk.BulkReboot(context.Background(), args, progressPrinter()))
	},
}

var bulkFactoryResetCmd = &cobra.Command{
	Use:   "bulk-factory-reset <address...>",
	Short: "Factory-reset many devices",
	Long:  "This is irreversible per device: all device configuration, including Wi-Fi credentials, is erased.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		return printResult(a.bulk.BulkFactoryReset(context.Background(), args, progressPrinter()))
	},
}

var bulkStatusCmd = &cobra.Command{
	Use:   "bulk-status <address...>",
	Short: "Fetch the full status of many devices in parallel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		return printResult(a.bulk.BulkStatus(context.Background(), args, progressPrinter()))
	},
}

var bulkConfigExportComponentTypes []string

var bulkConfigExportCmd = &cobra.Command{
	Use:   "bulk-config-export <address...>",
	Short: "Export every matching component's config across many devices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		export := a.bulk.BulkConfigExport(context.Background(), args, bulkConfigExportComponentTypes, progressPrinter())

		return printResult(export)
	},
}

func init() {
	bulkConfigExportCmd.Flags().StringArrayVar(&bulkConfigExportComponentTypes, "component-type", nil,
		"component type to export, e.g. switch (repeatable); components of other types are skipped, so nothing is exported when omitted")
}

// progressPrinter writes a one-line progress update to stderr as bulk
// operations complete, unless the output format is machine-readable.
func progressPrinter() func(address string, done, total int) {
	if output != "table" {
		return nil
	}

	return func(address string, done, total int) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, address)
	}
}
