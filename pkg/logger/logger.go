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

// Package logger provides JSON structured logging using zerolog, following
// the same component-tagged convention the rest of the codebase expects:
// every subsystem pulls a child logger via WithComponent and logs through it.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls process-wide logger construction.
type Config struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Debug  bool   `mapstructure:"debug" json:"debug" yaml:"debug"`
	Output string `mapstructure:"output" json:"output" yaml:"output"`
}

// Logger is the interface every subsystem depends on instead of a concrete
// zerolog.Logger, so tests can substitute NewTestLogger.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) Logger
}

type zlogger struct {
	z zerolog.Logger
}

// New builds a Logger from Config. An empty Config produces an info-level
// logger writing JSON to stdout.
func New(cfg Config) Logger {
	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	} else if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	z := zerolog.New(out).Level(level).With().Timestamp().Logger()

	return &zlogger{z: z}
}

// NewTestLogger returns a Logger that discards everything written to it.
func NewTestLogger() Logger {
	return &zlogger{z: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

func (l *zlogger) Trace() *zerolog.Event { return l.z.Trace() }
func (l *zlogger) Debug() *zerolog.Event { return l.z.Debug() }
func (l *zlogger) Info() *zerolog.Event  { return l.z.Info() }
func (l *zlogger) Warn() *zerolog.Event  { return l.z.Warn() }
func (l *zlogger) Error() *zerolog.Event { return l.z.Error() }
func (l *zlogger) With() zerolog.Context { return l.z.With() }

func (l *zlogger) WithComponent(component string) Logger {
	return &zlogger{z: l.z.With().Str("component", component).Logger()}
}
