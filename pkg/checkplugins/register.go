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

// Package checkplugins contains the built-in discovery plugins.
package checkplugins

import (
	"fmt"

	"github.com/carverauto/autochecks/pkg/discovery"
)

// Register adds every built-in plugin and host label function to r.
func Register(r *discovery.Registry) error {
	plugins := []discovery.DiscoveryCapable{
		filesystemPlugin(),
		uptimePlugin(),
		interfacePlugin(),
	}

	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Name(), err)
		}
	}

	labelFunctions := map[string]discovery.HostLabelFunction{
		"snmp_info": snmpInfoHostLabels,
		"labels":    agentHostLabels,
	}

	for section, fn := range labelFunctions {
		if err := r.RegisterHostLabels(section, fn); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() (*discovery.Registry, error) {
	r := discovery.NewRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}

	return r, nil
}
