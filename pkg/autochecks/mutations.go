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

	"github.com/carverauto/autochecks/pkg/models"
)

// Deduplicate keeps the first entry seen for every service ID, preserving order.
func Deduplicate(entries []models.AutocheckEntry) []models.AutocheckEntry {
	seen := make(map[models.ServiceID]struct{}, len(entries))
	out := make([]models.AutocheckEntry, 0, len(entries))

	for _, entry := range entries {
		id := entry.ID()
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}

		out = append(out, entry)
	}

	return out
}

// SetAutochecksOfRealHosts replaces the autochecks of a non-cluster host.
func (m *Manager) SetAutochecksOfRealHosts(ctx context.Context, hostname string, entries []models.AutocheckEntry) error {
	return m.update(ctx, hostname, func([]models.AutocheckEntry) ([]models.AutocheckEntry, error) {
		return Deduplicate(entries), nil
	})
}

// SetAutochecksOfCluster stores the services of cluster on each node. Entries
// a node holds for other owners are kept; entries owned by cluster are replaced.
func (m *Manager) SetAutochecksOfCluster(
	ctx context.Context,
	nodes []string,
	cluster string,
	entries []models.AutocheckEntry,
	hostOfService HostOfService,
	describe DescribeService,
) error {
	for _, node := range nodes {
		err := m.update(ctx, node, func(existing []models.AutocheckEntry) ([]models.AutocheckEntry, error) {
			kept := make([]models.AutocheckEntry, 0, len(existing)+len(entries))

			for _, entry := range existing {
				owned, err := ownedBy(node, cluster, entry, hostOfService, describe)
				if err != nil {
					return nil, err
				}

				if !owned {
					kept = append(kept, entry)
				}
			}

			kept = append(kept, entries...)

			return Deduplicate(kept), nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// RemoveAutochecksOfHost drops the entries on node whose owner is hostname and
// returns how many were removed.
func (m *Manager) RemoveAutochecksOfHost(
	ctx context.Context,
	node string,
	hostname string,
	hostOfService HostOfService,
	describe DescribeService,
) (int, error) {
	removed := 0

	err := m.update(ctx, node, func(existing []models.AutocheckEntry) ([]models.AutocheckEntry, error) {
		kept := make([]models.AutocheckEntry, 0, len(existing))

		for _, entry := range existing {
			owned, err := ownedBy(node, hostname, entry, hostOfService, describe)
			if err != nil {
				return nil, err
			}

			if owned {
				removed++
				continue
			}

			kept = append(kept, entry)
		}

		return kept, nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// ownedBy reports whether entry on node belongs to owner. Entries that cannot
// be described are never considered owned, so they survive rewrites.
func ownedBy(node, owner string, entry models.AutocheckEntry, hostOfService HostOfService, describe DescribeService) (bool, error) {
	description, err := describe(node, entry.CheckPluginName, entry.Item)
	if err != nil {
		return false, nil
	}

	host, err := hostOfService(node, description)
	if err != nil {
		return false, err
	}

	return host == owner, nil
}
