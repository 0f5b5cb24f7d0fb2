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
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/autochecks/pkg/models"
)

// clusterServices discovers every node of cluster and merges the services
// the cluster owns. Nodes are processed concurrently; merging follows node order.
func (r *Resolver) clusterServices(ctx context.Context, cluster string, opts Options) (*serviceTable, error) {
	nodes := r.cfg.Nodes(cluster)
	perNode := make([][]Qualified[models.Service], len(nodes))

	g, gctx := errgroup.WithContext(ctx)

	for i, node := range nodes {
		i, node := i, node

		g.Go(func() error {
			owned, err := r.servicesOwnedBy(gctx, node, cluster, opts)
			if err != nil {
				return fmt.Errorf("node %s of %s: %w", node, cluster, err)
			}

			perNode[i] = owned

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := newServiceTable()

	for i, node := range nodes {
		for _, qs := range perNode[i] {
			mergeNodeObservation(table, node, qs)
		}
	}

	return table, nil
}

// servicesOwnedBy returns the classified services of node that cluster owns.
func (r *Resolver) servicesOwnedBy(ctx context.Context, node, cluster string, opts Options) ([]Qualified[models.Service], error) {
	q, err := r.qualifyServices(ctx, node, opts)
	if err != nil {
		return nil, err
	}

	var owned []Qualified[models.Service]

	for _, qs := range q.Chain() {
		owner, err := r.cfg.HostOfClusteredService(node, qs.Value.Description)
		if err != nil {
			return nil, fmt.Errorf("owner of %q on %s: %w", qs.Value.Description, node, err)
		}

		if owner == cluster {
			owned = append(owned, qs)
		}
	}

	return owned, nil
}

// mergeNodeObservation folds one node's view of a service into the cluster
// table. A service monitored on any node stays "old"; new on one node and
// vanished on another also counts as "old".
func mergeNodeObservation(table *serviceTable, node string, qs Qualified[models.Service]) {
	id := qs.Value.ID()

	existing, seen := table.get(id)
	if !seen {
		table.set(id, &entry{transition: qs.Transition, service: qs.Value, nodes: []string{node}})
		return
	}

	existing.nodes = append(existing.nodes, node)

	switch {
	case existing.transition == models.TransitionOld:
	case qs.Transition == models.TransitionOld:
		existing.transition = models.TransitionOld
		existing.service = qs.Value
	case existing.transition != qs.Transition:
		// one node reports new, the other vanished
		existing.transition = models.TransitionOld
	}
}
