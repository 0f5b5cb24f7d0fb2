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

// Package config loads the discovery configuration and answers the
// per-host configuration questions of the discovery core.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

const (
	defaultRediscoveryDeadline = 120 * time.Second
	defaultLivestatusTimeout   = 10 * time.Second
	defaultCommandsPerSecond   = 20
	defaultSNMPPort            = 161
	defaultSNMPTimeout         = 5 * time.Second
)

// Paths are the on-disk locations of discovery state.
type Paths struct {
	AutochecksDir      string `json:"autochecks_dir" yaml:"autochecks_dir" toml:"autochecks_dir"`
	HostLabelsDir      string `json:"host_labels_dir" yaml:"host_labels_dir" toml:"host_labels_dir"`
	AutodiscoveryDir   string `json:"autodiscovery_dir" yaml:"autodiscovery_dir" toml:"autodiscovery_dir"`
	SectionCacheDir    string `json:"section_cache_dir" yaml:"section_cache_dir" toml:"section_cache_dir"`
	ManagementCacheDir string `json:"management_cache_dir" yaml:"management_cache_dir" toml:"management_cache_dir"`
}

// LivestatusConfig locates the monitoring core.
type LivestatusConfig struct {
	Socket            string          `json:"socket" yaml:"socket" toml:"socket"`
	Timeout           models.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	CommandsPerSecond float64         `json:"commands_per_second" yaml:"commands_per_second" toml:"commands_per_second"`
}

// RediscoveryConfig bounds one unattended rediscovery sweep.
type RediscoveryConfig struct {
	Deadline models.Duration `json:"deadline" yaml:"deadline" toml:"deadline"`
}

// SNMPConfig holds the defaults of the SNMP section provider.
type SNMPConfig struct {
	Port      uint16          `json:"port" yaml:"port" toml:"port"`
	Community string          `json:"community" yaml:"community" toml:"community"`
	Version   string          `json:"version" yaml:"version" toml:"version"`
	Timeout   models.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
	Retries   int             `json:"retries" yaml:"retries" toml:"retries"`
}

// Config is the root configuration of the discovery tools.
type Config struct {
	Paths       Paths                `json:"paths" yaml:"paths" toml:"paths"`
	Livestatus  LivestatusConfig     `json:"livestatus" yaml:"livestatus" toml:"livestatus"`
	Events      *models.EventsConfig `json:"events,omitempty" yaml:"events,omitempty" toml:"events"`
	Logging     *logger.Config       `json:"logging,omitempty" yaml:"logging,omitempty" toml:"logging"`
	Rediscovery RediscoveryConfig    `json:"rediscovery" yaml:"rediscovery" toml:"rediscovery"`
	SNMP        SNMPConfig           `json:"snmp" yaml:"snmp" toml:"snmp"`
	World       World                `json:"world" yaml:"world" toml:"world"`
}

// Validate fills defaults and checks the configuration.
func (c *Config) Validate() error {
	if c.Paths.AutochecksDir == "" {
		return errAutochecksDirRequired
	}

	base := filepath.Dir(filepath.Clean(c.Paths.AutochecksDir))

	if c.Paths.HostLabelsDir == "" {
		c.Paths.HostLabelsDir = filepath.Join(base, "discovered_host_labels")
	}

	if c.Paths.AutodiscoveryDir == "" {
		c.Paths.AutodiscoveryDir = filepath.Join(base, "autodiscovery")
	}

	if c.Paths.SectionCacheDir == "" {
		c.Paths.SectionCacheDir = filepath.Join(base, "cache", "sections")
	}

	if c.Paths.ManagementCacheDir == "" {
		c.Paths.ManagementCacheDir = filepath.Join(c.Paths.SectionCacheDir, "management")
	}

	if c.Livestatus.Timeout == 0 {
		c.Livestatus.Timeout = models.Duration(defaultLivestatusTimeout)
	}

	if c.Livestatus.CommandsPerSecond <= 0 {
		c.Livestatus.CommandsPerSecond = defaultCommandsPerSecond
	}

	if c.Rediscovery.Deadline <= 0 {
		c.Rediscovery.Deadline = models.Duration(defaultRediscoveryDeadline)
	}

	c.SNMP.applyDefaults()

	if c.Events != nil {
		if err := c.Events.Validate(); err != nil {
			return fmt.Errorf("events: %w", err)
		}
	}

	if c.Logging != nil {
		if _, err := c.Logging.ParsedLevel(); err != nil {
			return fmt.Errorf("logging: %w", err)
		}
	}

	if err := c.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	return nil
}

func (s *SNMPConfig) applyDefaults() {
	if s.Port == 0 {
		s.Port = defaultSNMPPort
	}

	if s.Community == "" {
		s.Community = "public"
	}

	if s.Version == "" {
		s.Version = "v2c"
	}

	if s.Timeout == 0 {
		s.Timeout = models.Duration(defaultSNMPTimeout)
	}
}
