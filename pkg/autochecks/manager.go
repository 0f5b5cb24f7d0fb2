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

package autochecks

import (
	"context"
	"fmt"
	"sync"

	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

// ComputeCheckParameters evaluates the effective parameters of a service.
type ComputeCheckParameters func(hostname string, plugin models.CheckPluginName, item models.Item, discovered models.Parameters) (interface{}, error)

// DescribeService computes the human readable description of a service.
type DescribeService func(hostname string, plugin models.CheckPluginName, item models.Item) (string, error)

// HostOfService returns the host a service description belongs to: the
// cluster owning it, or hostname itself.
type HostOfService func(hostname, description string) (string, error)

// Manager caches raw and resolved autochecks per host. It lives for one run;
// callers drop or Clear it when the configuration changes.
type Manager struct {
	dir    string
	logger logger.Logger

	mu       sync.Mutex
	raw      map[string][]models.AutocheckEntry
	resolved map[string][]models.ConfiguredService
	labels   map[string]map[string]models.ServiceLabels
}

// NewManager creates a manager over the autochecks directory dir.
func NewManager(dir string, log logger.Logger) *Manager {
	return &Manager{
		dir:      dir,
		logger:   log,
		raw:      make(map[string][]models.AutocheckEntry),
		resolved: make(map[string][]models.ConfiguredService),
		labels:   make(map[string]map[string]models.ServiceLabels),
	}
}

// Dir returns the autochecks directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Store returns the store of hostname.
func (m *Manager) Store(hostname string) (*Store, error) {
	return NewStore(m.dir, hostname)
}

// GetAutochecksOf returns the configured services of hostname, resolving
// descriptions and effective parameters on first use.
func (m *Manager) GetAutochecksOf(
	hostname string,
	computeParams ComputeCheckParameters,
	describe DescribeService,
	effectiveHost HostOfService,
) ([]models.ConfiguredService, error) {
	m.mu.Lock()
	cached, ok := m.resolved[hostname]
	m.mu.Unlock()

	if ok {
		return cached, nil
	}

	entries, err := m.RawAutochecks(hostname)
	if err != nil {
		return nil, err
	}

	services := make([]models.ConfiguredService, 0, len(entries))

	for _, entry := range entries {
		description, err := describe(hostname, entry.CheckPluginName, entry.Item)
		if err != nil {
			m.logger.Error().
				Err(err).
				Str("host", hostname).
				Str("service_id", entry.ID().String()).
				Msg("Dropping autocheck without valid description")

			continue
		}

		owner, err := effectiveHost(hostname, description)
		if err != nil {
			return nil, fmt.Errorf("resolve owner of %q on %s: %w", description, hostname, err)
		}

		params, err := computeParams(owner, entry.CheckPluginName, entry.Item, entry.Parameters)
		if err != nil {
			return nil, fmt.Errorf("compute parameters of %q on %s: %w", description, hostname, err)
		}

		discovered := entry.Parameters

		services = append(services, models.ConfiguredService{
			CheckPluginName:      entry.CheckPluginName,
			Item:                 entry.Item,
			Description:          description,
			Parameters:           params,
			DiscoveredParameters: &discovered,
			ServiceLabels:        entry.ServiceLabels.Clone(),
		})
	}

	m.mu.Lock()
	m.resolved[hostname] = services
	m.mu.Unlock()

	return services, nil
}

// DiscoveredLabelsOf returns the labels persisted for the service with the given
// description. Parameters are not evaluated. Unknown services have no labels.
func (m *Manager) DiscoveredLabelsOf(hostname, description string, describe DescribeService) (models.ServiceLabels, error) {
	m.mu.Lock()
	byDescription, ok := m.labels[hostname]
	m.mu.Unlock()

	if !ok {
		entries, err := m.RawAutochecks(hostname)
		if err != nil {
			return nil, err
		}

		byDescription = make(map[string]models.ServiceLabels, len(entries))

		for _, entry := range entries {
			desc, err := describe(hostname, entry.CheckPluginName, entry.Item)
			if err != nil {
				continue
			}

			byDescription[desc] = entry.ServiceLabels
		}

		m.mu.Lock()
		m.labels[hostname] = byDescription
		m.mu.Unlock()
	}

	if labels, found := byDescription[description]; found {
		return labels.Clone(), nil
	}

	return models.ServiceLabels{}, nil
}

// RawAutochecks returns the unresolved entries of hostname, reading the file once.
func (m *Manager) RawAutochecks(hostname string) ([]models.AutocheckEntry, error) {
	m.mu.Lock()
	cached, ok := m.raw[hostname]
	m.mu.Unlock()

	if ok {
		return cached, nil
	}

	store, err := m.Store(hostname)
	if err != nil {
		return nil, err
	}

	entries, err := store.Read()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.raw[hostname] = entries
	m.mu.Unlock()

	return entries, nil
}

// Invalidate drops every cached view of hostname.
func (m *Manager) Invalidate(hostname string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.raw, hostname)
	delete(m.resolved, hostname)
	delete(m.labels, hostname)
}

// Clear drops all cached state.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.raw = make(map[string][]models.AutocheckEntry)
	m.resolved = make(map[string][]models.ConfiguredService)
	m.labels = make(map[string]map[string]models.ServiceLabels)
}

// update runs a locked read-modify-write cycle on hostname's file and
// invalidates its cache.
func (m *Manager) update(ctx context.Context, hostname string, fn func([]models.AutocheckEntry) ([]models.AutocheckEntry, error)) error {
	store, err := m.Store(hostname)
	if err != nil {
		return err
	}

	defer m.Invalidate(hostname)

	return store.WithLock(ctx, func() error {
		existing, err := store.Read()
		if err != nil {
			return err
		}

		updated, err := fn(existing)
		if err != nil {
			return err
		}

		return store.Write(updated)
	})
}
