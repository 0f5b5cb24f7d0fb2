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

// Package sections provides the parsed section data discovery runs on.
package sections

import (
	"context"
	"fmt"

	"github.com/carverauto/autochecks/pkg/config"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

// HostDirectory looks up the host specification used to reach a device.
type HostDirectory interface {
	Host(name string) *config.HostSpec
}

// Fetcher serves sections from the file cache and refreshes SNMP hosts live
// when the cache may not be used.
type Fetcher struct {
	cache    *FileCache
	snmp     *SNMPProvider
	hosts    HostDirectory
	defaults config.SNMPConfig
	logger   logger.Logger
}

func NewFetcher(cache *FileCache, snmp *SNMPProvider, hosts HostDirectory, defaults config.SNMPConfig, log logger.Logger) *Fetcher {
	return &Fetcher{cache: cache, snmp: snmp, hosts: hosts, defaults: defaults, logger: log}
}

// FetchSections returns the parsed sections of host for source.
func (f *Fetcher) FetchSections(ctx context.Context, host string, source models.SourceType, useCache bool) (models.Sections, error) {
	spec := f.hosts.Host(host)
	live := source == models.SourceHost && spec != nil && spec.SNMP != nil && f.snmp != nil

	if useCache || !live {
		sections, fetchedAt, ok, err := f.cache.Load(host, source)
		if err != nil {
			return nil, err
		}

		if ok {
			f.logger.Debug().
				Str("host", host).
				Str("source", string(source)).
				Time("fetched_at", fetchedAt).
				Int("sections", len(sections)).
				Msg("Using cached sections")

			return sections, nil
		}
	}

	if live {
		return f.fetchSNMP(ctx, host, spec)
	}

	f.logger.Debug().Str("host", host).Str("source", string(source)).Msg("No section data available")

	return models.Sections{}, nil
}

func (f *Fetcher) fetchSNMP(ctx context.Context, host string, spec *config.HostSpec) (models.Sections, error) {
	target := f.target(host, spec)

	sections, err := f.snmp.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("snmp fetch of %s: %w", host, err)
	}

	if err := f.cache.Store(host, models.SourceHost, sections); err != nil {
		f.logger.Warn().Err(err).Str("host", host).Msg("Failed to cache SNMP sections")
	}

	return sections, nil
}

func (f *Fetcher) target(host string, spec *config.HostSpec) SNMPTarget {
	t := SNMPTarget{
		Address:   spec.Address,
		Port:      f.defaults.Port,
		Community: f.defaults.Community,
		Version:   f.defaults.Version,
		Timeout:   f.defaults.Timeout.Std(),
		Retries:   f.defaults.Retries,
		Tables:    spec.SNMP.Tables,
	}

	if t.Address == "" {
		t.Address = host
	}

	if spec.SNMP.Port != 0 {
		t.Port = spec.SNMP.Port
	}

	if spec.SNMP.Community != "" {
		t.Community = spec.SNMP.Community
	}

	if spec.SNMP.Version != "" {
		t.Version = spec.SNMP.Version
	}

	return t
}
