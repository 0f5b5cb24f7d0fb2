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

package models

import (
	"fmt"
	"time"
)

// NATSConfig configures NATS connectivity
type NATSConfig struct {
	URL    string         `json:"url" yaml:"url" toml:"url"`
	Domain string         `json:"domain,omitempty" yaml:"domain,omitempty" toml:"domain"`
	TLS    *NATSTLSConfig `json:"tls,omitempty" yaml:"tls,omitempty" toml:"tls"`
}

// NATSTLSConfig enables mTLS towards the NATS server.
type NATSTLSConfig struct {
	CertFile   string `json:"cert_file" yaml:"cert_file" toml:"cert_file"`
	KeyFile    string `json:"key_file" yaml:"key_file" toml:"key_file"`
	CAFile     string `json:"ca_file" yaml:"ca_file" toml:"ca_file"`
	ServerName string `json:"server_name,omitempty" yaml:"server_name,omitempty" toml:"server_name"`
}

// Validate ensures the NATS configuration is valid
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("nats url is required")
	}

	return nil
}

// EventsConfig configures discovery event publishing
type EventsConfig struct {
	Enabled    bool        `json:"enabled" yaml:"enabled" toml:"enabled"`
	StreamName string      `json:"stream_name" yaml:"stream_name" toml:"stream_name"`
	Subjects   []string    `json:"subjects" yaml:"subjects" toml:"subjects"`
	NATS       *NATSConfig `json:"nats,omitempty" yaml:"nats,omitempty" toml:"nats"`
}

// Validate fills defaults and checks the NATS settings when enabled.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.StreamName == "" {
		c.StreamName = "discovery"
	}

	if len(c.Subjects) == 0 {
		c.Subjects = []string{"discovery.>"}
	}

	if c.NATS == nil {
		return fmt.Errorf("nats settings are required when events are enabled")
	}

	return c.NATS.Validate()
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// DiscoveryEventData is the payload of a host discovery event.
type DiscoveryEventData struct {
	Host      string           `json:"host"`
	Mode      DiscoveryMode    `json:"mode,omitempty"`
	Result    *DiscoveryResult `json:"result,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	RunID     string           `json:"run_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ActivationEventData is published when a sweep requests a core reload.
type ActivationEventData struct {
	RunID        string    `json:"run_id"`
	ChangedHosts []string  `json:"changed_hosts"`
	Timestamp    time.Time `json:"timestamp"`
}
