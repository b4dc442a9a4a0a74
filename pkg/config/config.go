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

// Package config loads and validates the shelly-manager agent/CLI
// configuration: built-in defaults, overlaid by a YAML config file when one
// is found, with SHELLY_MANAGER_ environment variables taking precedence over
// the file for the keys the file sets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full process configuration for both cmd/shelly-agent and
// cmd/shelly-cli.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Scanner    ScannerConfig    `mapstructure:"scanner" yaml:"scanner"`
	Bulk       BulkConfig       `mapstructure:"bulk" yaml:"bulk"`
	Transport  TransportConfig  `mapstructure:"transport" yaml:"transport"`
	Credential CredentialConfig `mapstructure:"credential" yaml:"credential"`
	Mdns       MdnsConfig       `mapstructure:"mdns" yaml:"mdns"`
}

// LoggingConfig controls the zerolog sink the whole process shares.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=trace debug info warn error"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

// ServerConfig controls the long-running HTTP service (cmd/shelly-agent).
type ServerConfig struct {
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address" validate:"required"`
}

// ScannerConfig carries Scanner.Scan's tunables (spec §4.7/§5).
type ScannerConfig struct {
	MaxWorkers int           `mapstructure:"max_workers" yaml:"max_workers" validate:"min=1,max=200"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
}

// BulkConfig carries BulkOrchestrator's tunables (spec §4.8/§5).
type BulkConfig struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" validate:"min=1,max=50"`
}

// TransportConfig carries the two device-facing timeouts (spec §5).
type TransportConfig struct {
	DiscoveryTimeout time.Duration `mapstructure:"discovery_timeout" yaml:"discovery_timeout" validate:"min=0"`
	StatusTimeout    time.Duration `mapstructure:"status_timeout" yaml:"status_timeout" validate:"min=0"`
}

// CredentialConfig locates and unlocks the encrypted credential store
// (pkg/credential).
type CredentialConfig struct {
	StorePath      string `mapstructure:"store_path" yaml:"store_path" validate:"required"`
	PassphraseEnv  string `mapstructure:"passphrase_env" yaml:"passphrase_env" validate:"required"`
	AuthStateTTL   time.Duration `mapstructure:"auth_state_ttl" yaml:"auth_state_ttl" validate:"min=0"`
}

// MdnsConfig controls the optional mDNS discovery boundary.
type MdnsConfig struct {
	ServiceTypes []string      `mapstructure:"service_types" yaml:"service_types"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
}

const envPrefix = "SHELLY_MANAGER"

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{ListenAddress: ":8765"},
		Scanner: ScannerConfig{MaxWorkers: 50, Timeout: 3 * time.Second},
		Bulk:    BulkConfig{MaxWorkers: 10},
		Transport: TransportConfig{
			DiscoveryTimeout: 3 * time.Second,
			StatusTimeout:    10 * time.Second,
		},
		Credential: CredentialConfig{
			StorePath:     filepath.Join(defaultConfigDir(), "credentials.enc"),
			PassphraseEnv: "SHELLY_MANAGER_CREDENTIAL_PASSPHRASE",
			AuthStateTTL:  time.Hour,
		},
		Mdns: MdnsConfig{
			ServiceTypes: []string{"_http._tcp", "_shelly._tcp"},
			Timeout:      3 * time.Second,
		},
	}
}

// Load starts from Default() and, when a config file is found at configPath
// (or on the default search path when empty), overlays its values, with
// environment variables prefixed SHELLY_MANAGER_ overriding the keys the file
// sets. Environment variables for keys absent from the file are not read,
// and with no config file none are read. The result is validated.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	cfg := Default()

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if found {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if isConfigFileNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

func isConfigFileNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}

	return os.IsNotExist(err)
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shelly-manager")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "shelly-manager")
}

// Save writes cfg to path in YAML form.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
