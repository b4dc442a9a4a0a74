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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errAddressRequired = errors.New("an address argument is required")

var statusCmd = &cobra.Command{
	Use:   "status <address>",
	Short: "Fetch the full component status for one device",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errAddressRequired
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	snapshot, err := a.gateway.GetFullStatus(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	return printResult(snapshot)
}
