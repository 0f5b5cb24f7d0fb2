/*
 * Copyright 2025 Carver Automation Corporation.
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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level      string `json:"level" yaml:"level" toml:"level"`
	Debug      bool   `json:"debug" yaml:"debug" toml:"debug"`
	Output     string `json:"output" yaml:"output" toml:"output"`
	TimeFormat string `json:"time_format" yaml:"time_format" toml:"time_format"`
}

// Writer resolves the configured output stream.
func (c *Config) Writer() io.Writer {
	if c.Output == "stderr" {
		return os.Stderr
	}

	return os.Stdout
}

// ParsedLevel returns the effective level; Debug overrides Level.
func (c *Config) ParsedLevel() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	if c.Level == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	return level, nil
}

// New builds a Logger writing to w with the configured level and time format.
func New(config *Config, w io.Writer) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := config.ParsedLevel()
	if err != nil {
		return nil, err
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	zl := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	return Wrap(zl), nil
}
