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

package rediscovery

import (
	"time"

	"github.com/carverauto/autochecks/pkg/models"
)

// Reasons for leaving a flagged host queued.
const (
	ReasonDisabled        = "automatic discovery disabled for this host"
	ReasonExcludedTime    = "we are currently in a disallowed time of day"
	ReasonGroupTime       = "last activation is too recent"
	reasonCheckDisabled   = "discovery check disabled"
	reasonHostNotUp       = "host is not up"
	reasonDeadlineReached = "sweep deadline reached"
)

// MayRediscover returns why rediscovery must wait, or "" when it may run now.
// Excluded windows are evaluated in UTC; oldestQueued is the earliest flag in
// the whole queue, so the group time throttles the queue as a batch.
func MayRediscover(params *models.DiscoveryCheckParams, reference, oldestQueued time.Time) string {
	if params == nil {
		return ReasonDisabled
	}

	rd := params.InventoryRediscovery
	if !rd.Enabled() {
		return ReasonDisabled
	}

	now := models.At(reference.UTC())
	for _, window := range rd.ExcludedTime {
		if window.Contains(now) {
			return ReasonExcludedTime
		}
	}

	if reference.Sub(oldestQueued) < rd.GroupTime.Std() {
		return ReasonGroupTime
	}

	return ""
}
