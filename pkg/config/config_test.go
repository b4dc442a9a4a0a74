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

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellyops/shelly-manager/pkg/config"
)

func TestDefault_PassesValidation(t *testing.T) {
	require.NoError(t, config.Validate(config.Default()))
}

func TestValidate_RejectsBadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "verbose"

	assert.Error(t, config.Validate(cfg))
}

func TestValidate_RejectsZeroMaxWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.Scanner.MaxWorkers = 0

	assert.Error(t, config.Validate(cfg))
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Scanner.MaxWorkers, cfg.Scanner.MaxWorkers)
}
