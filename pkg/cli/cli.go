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

// Package cli implements the discovery command line.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "/etc/autochecks/discovery.yaml"

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Debug      bool
	NoColor    bool
}

// NewRootCommand creates the discovery command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "discovery",
		Short: "Discover services and inspect check tables",
		Long: `discovery finds the services and host labels of monitored hosts,
keeps the autochecks of every host up to date and computes the check
table the monitoring core runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.NoColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", DefaultConfigPath, "Path to the configuration file (yaml, toml or json)")
	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newDiscoverCommand(opts),
		newAutodiscoveryCommand(opts),
		newCheckTableCommand(opts),
		newCheckDiscoveryCommand(opts),
	)

	return cmd
}
