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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var actionParams []string

var actionCmd = &cobra.Command{
	Use:   "action <address> <component-key> <action>",
	Short: "Execute one component action on one device (e.g. switch:0 Toggle)",
	Long: `action routes through the same ApiPrefix.Action/Legacy.Action
dispatch DeviceGateway uses internally: Legacy.-prefixed verbs hit the fixed
legacy HTTP mapping table, everything else is checked against the device's
own method list before being called.`,
	Args: cobra.ExactArgs(3),
	RunE: runAction,
}

func init() {
	actionCmd.Flags().StringArrayVar(&actionParams, "param", nil, "a key=value parameter, repeatable; values are parsed as JSON when possible, else kept as strings")
}

func runAction(cmd *cobra.Command, args []string) error {
	address, componentKey, action := args[0], args[1], args[2]

	params, err := parseParams(actionParams)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	result := a.gateway.ExecuteComponentAction(context.Background(), address, componentKey, action, params)

	return printResult(result)
}

func parseParams(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(raw))

	for _, kv := range raw {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", kv)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			params[key] = decoded
		} else {
			params[key] = value
		}
	}

	return params, nil
}
