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

package discovery

import (
	"context"
	"sort"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/models"
)

const snmpInfoSection = "snmp_info"

// DiscoverHostLabels reconciles the host labels found now with the stored ones.
func (r *Resolver) DiscoverHostLabels(ctx context.Context, hostname string, opts Options) (*QualifiedDiscovery[models.HostLabel], error) {
	var (
		current []models.HostLabel
		err     error
	)

	if r.cfg.IsCluster(hostname) {
		current, err = r.clusterHostLabels(ctx, hostname, opts)
	} else {
		current, err = r.currentHostLabels(ctx, hostname, opts)
	}

	if err != nil {
		return nil, err
	}

	store, err := autochecks.NewHostLabelsStore(r.labelsDir, hostname)
	if err != nil {
		return nil, err
	}

	preexisting, err := store.Load()
	if err != nil {
		return nil, err
	}

	return Qualify(preexisting, current, models.HostLabelName), nil
}

// SaveHostLabels persists labels for hostname.
func (r *Resolver) SaveHostLabels(hostname string, labels []models.HostLabel) error {
	store, err := autochecks.NewHostLabelsStore(r.labelsDir, hostname)
	if err != nil {
		return err
	}

	return store.Save(labels)
}

// clusterHostLabels merges the labels of all nodes; later nodes override
// earlier ones.
func (r *Resolver) clusterHostLabels(ctx context.Context, cluster string, opts Options) ([]models.HostLabel, error) {
	var merged []models.HostLabel

	for _, node := range r.cfg.Nodes(cluster) {
		labels, err := r.currentHostLabels(ctx, node, opts)
		if err != nil {
			return nil, err
		}

		merged = append(merged, labels...)
	}

	// Qualify collapses duplicates to the last value
	return merged, nil
}

func (r *Resolver) currentHostLabels(ctx context.Context, hostname string, opts Options) ([]models.HostLabel, error) {
	hostSections, mgmtSections, err := r.fetchSections(ctx, hostname, opts.UseCachedSections)
	if err != nil {
		return nil, err
	}

	var labels []models.HostLabel

	for _, sections := range []models.Sections{hostSections, mgmtSections} {
		for _, name := range hostLabelSectionOrder(sections) {
			fn, ok := r.registry.HostLabelFunction(name)
			if !ok {
				continue
			}

			found, err := fn(sections[name])
			if err != nil {
				pe := &PluginError{Plugin: models.CheckPluginName(name), Err: err}
				if err := r.handlePluginError(ctx, hostname, pe, opts.OnError); err != nil {
					return nil, err
				}

				continue
			}

			for _, l := range found {
				l.Plugin = models.CheckPluginName(name)
				labels = append(labels, l)
			}
		}
	}

	return labels, nil
}

// hostLabelSectionOrder sorts section names with snmp_info first.
func hostLabelSectionOrder(sections models.Sections) []string {
	names := sections.Names()

	sort.Slice(names, func(i, j int) bool {
		if (names[i] == snmpInfoSection) != (names[j] == snmpInfoSection) {
			return names[i] == snmpInfoSection
		}

		return names[i] < names[j]
	})

	return names
}
