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
	"github.com/spf13/cobra"
)

var (
	configPath string
	output     string
)

var rootCmd = &cobra.Command{
	Use:   "shelly-cli",
	Short: "Operate a population of Shelly devices from the command line",
	Long: `shelly-cli scans, inspects, and controls Shelly devices (both the
modern RPC generation and the legacy HTTP generation) through the same
gateway, scanner, and bulk orchestrator shelly-agent runs as a service.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to the platform config dir)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table|json|yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(bulkScanCmd)
	rootCmd.AddCommand(bulkUpdateCmd)
	rootCmd.AddCommand(bulkRebootCmd)
	rootCmd.AddCommand(bulkFactoryResetCmd)
	rootCmd.AddCommand(bulkStatusCmd)
	rootCmd.AddCommand(bulkConfigExportCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
