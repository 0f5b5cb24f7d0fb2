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

// Package rediscovery runs unattended discovery for hosts the discovery
// check has flagged.
package rediscovery

//go:generate mockgen -destination=mock_rediscovery.go -package=rediscovery github.com/carverauto/autochecks/pkg/rediscovery Clock,Ticker,CoreClient,HostDiscoverer,ActivationPublisher

import (
	"context"
	"time"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// CoreClient is the part of the monitoring core the scheduler talks to.
type CoreClient interface {
	HostStates(ctx context.Context) (map[string]int, error)
	ScheduleForcedServiceCheck(ctx context.Context, host, service string, at time.Time) error
	Reload(ctx context.Context, at time.Time) error
}

// HostDiscoverer runs discovery on one host.
type HostDiscoverer interface {
	DiscoverOnHost(ctx context.Context, hostname string, req discovery.Request) *models.DiscoveryResult
}

// HostConfig answers the configuration questions of a sweep.
type HostConfig interface {
	Exists(hostname string) bool
	DiscoveryCheckParameters(hostname string) *models.DiscoveryCheckParams
}

// ActivationPublisher announces batched activations.
type ActivationPublisher interface {
	PublishActivationRequested(ctx context.Context, runID string, changedHosts []string) error
}
