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

package checktable

import (
	"fmt"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

// HostConfig is the configuration a check table is computed from.
type HostConfig interface {
	IsCluster(hostname string) bool
	Nodes(cluster string) []string
	// IsPingHost reports hosts monitored without agent or SNMP data.
	IsPingHost(hostname string) bool
	// StaticChecks returns the manually configured services of hostname.
	StaticChecks(hostname string) ([]models.ConfiguredService, error)
	ServiceDescription(hostname string, plugin models.CheckPluginName, item models.Item) (string, error)
	HostOfClusteredService(hostname, description string) (string, error)
	ComputeCheckParameters(hostname string, plugin models.CheckPluginName, item models.Item, discovered models.Parameters) (interface{}, error)
	ServiceIgnored(hostname string, plugin models.CheckPluginName, description string) bool
}

// AutochecksSource resolves persisted autochecks. *autochecks.Manager implements it.
type AutochecksSource interface {
	GetAutochecksOf(
		hostname string,
		computeParams autochecks.ComputeCheckParameters,
		describe autochecks.DescribeService,
		effectiveHost autochecks.HostOfService,
	) ([]models.ConfiguredService, error)
}

// Options select which services end up in a table.
type Options struct {
	FilterMode     FilterMode
	SkipAutochecks bool
	SkipIgnored    bool
	// UseCache false bypasses both lookup and store.
	UseCache bool
}

// DefaultOptions are the options of a regular check run.
func DefaultOptions() Options {
	return Options{FilterMode: FilterNone, SkipIgnored: true, UseCache: true}
}

// Builder computes check tables and memoizes them in its Cache.
type Builder struct {
	cfg        HostConfig
	autochecks AutochecksSource
	cache      *Cache
	logger     logger.Logger
}

// NewBuilder creates a builder with an empty cache.
func NewBuilder(cfg HostConfig, source AutochecksSource, log logger.Logger) *Builder {
	return &Builder{
		cfg:        cfg,
		autochecks: source,
		cache:      NewCache(),
		logger:     log,
	}
}

// Cache exposes the table cache so callers can clear it on config changes.
func (b *Builder) Cache() *Cache {
	return b.cache
}

// GetCheckTable returns the check table of hostname.
func (b *Builder) GetCheckTable(hostname string, opts Options) (*CheckTable, error) {
	if b.cfg.IsPingHost(hostname) {
		opts.SkipAutochecks = true
	}

	key := cacheKey{
		hostname:       hostname,
		filterMode:     opts.FilterMode,
		skipAutochecks: opts.SkipAutochecks,
		skipIgnored:    opts.SkipIgnored,
	}

	if opts.UseCache {
		if table, ok := b.cache.get(key); ok {
			return table, nil
		}
	}

	table, err := b.compute(hostname, opts)
	if err != nil {
		return nil, err
	}

	if opts.UseCache {
		b.cache.put(key, table)
	}

	return table, nil
}

// NeededCheckNames lists the plugins whose sections a check run of hostname needs.
func (b *Builder) NeededCheckNames(hostname string, opts Options) ([]models.CheckPluginName, error) {
	table, err := b.GetCheckTable(hostname, opts)
	if err != nil {
		return nil, err
	}

	return table.NeededCheckNames(), nil
}

func (b *Builder) compute(hostname string, opts Options) (*CheckTable, error) {
	services := make(map[models.ServiceID]models.ConfiguredService)

	add := func(svc models.ConfiguredService) error {
		keep, err := b.keep(hostname, svc, opts)
		if err != nil {
			return err
		}

		if keep {
			services[svc.ID()] = svc
		}

		return nil
	}

	// a cluster owns no autochecks file
	if !opts.SkipAutochecks && !b.cfg.IsCluster(hostname) {
		autos, err := b.autochecksOf(hostname)
		if err != nil {
			return nil, err
		}

		for _, svc := range autos {
			if err := add(svc); err != nil {
				return nil, err
			}
		}
	}

	static, err := b.staticChecksOf(hostname)
	if err != nil {
		return nil, err
	}

	for _, svc := range static {
		if err := add(svc); err != nil {
			return nil, err
		}
	}

	if b.cfg.IsCluster(hostname) {
		clustered, err := b.servicesFromNodes(hostname, opts)
		if err != nil {
			return nil, err
		}

		for _, svc := range clustered {
			if err := add(svc); err != nil {
				return nil, err
			}
		}
	}

	return newCheckTable(hostname, services), nil
}

// servicesFromNodes collects node services owned by cluster, with parameters
// recomputed for the cluster.
func (b *Builder) servicesFromNodes(cluster string, opts Options) ([]models.ConfiguredService, error) {
	var out []models.ConfiguredService

	for _, node := range b.cfg.Nodes(cluster) {
		candidates, err := b.staticChecksOf(node)
		if err != nil {
			return nil, err
		}

		if !opts.SkipAutochecks {
			autos, err := b.autochecksOf(node)
			if err != nil {
				return nil, err
			}

			candidates = append(candidates, autos...)
		}

		for _, svc := range candidates {
			owner, err := b.cfg.HostOfClusteredService(node, svc.Description)
			if err != nil {
				return nil, fmt.Errorf("owner of %q on %s: %w", svc.Description, node, err)
			}

			if owner != cluster {
				continue
			}

			if svc.DiscoveredParameters != nil {
				params, err := b.cfg.ComputeCheckParameters(cluster, svc.CheckPluginName, svc.Item, *svc.DiscoveredParameters)
				if err != nil {
					return nil, err
				}

				svc.Parameters = params
			}

			out = append(out, svc)
		}
	}

	return out, nil
}

func (b *Builder) autochecksOf(hostname string) ([]models.ConfiguredService, error) {
	return b.autochecks.GetAutochecksOf(
		hostname,
		b.cfg.ComputeCheckParameters,
		b.cfg.ServiceDescription,
		b.cfg.HostOfClusteredService,
	)
}

func (b *Builder) staticChecksOf(hostname string) ([]models.ConfiguredService, error) {
	static, err := b.cfg.StaticChecks(hostname)
	if err != nil {
		return nil, fmt.Errorf("static checks of %s: %w", hostname, err)
	}

	valid := make([]models.ConfiguredService, 0, len(static))

	for _, svc := range static {
		if err := svc.CheckPluginName.Validate(); err != nil {
			b.logger.Warn().
				Err(err).
				Str("host", hostname).
				Msg("Skipping static check with invalid plugin name")

			continue
		}

		valid = append(valid, svc)
	}

	return valid, nil
}

func (b *Builder) keep(hostname string, svc models.ConfiguredService, opts Options) (bool, error) {
	if opts.SkipIgnored && b.cfg.ServiceIgnored(hostname, svc.CheckPluginName, svc.Description) {
		return false, nil
	}

	if opts.FilterMode == FilterIncludeClustered {
		return true, nil
	}

	owner, err := b.cfg.HostOfClusteredService(hostname, svc.Description)
	if err != nil {
		return false, fmt.Errorf("owner of %q on %s: %w", svc.Description, hostname, err)
	}

	if opts.FilterMode == FilterOnlyClustered {
		return owner != hostname, nil
	}

	return owner == hostname, nil
}
