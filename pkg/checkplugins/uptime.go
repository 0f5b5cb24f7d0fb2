package checkplugins

import (
	"context"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/models"
)

// uptimePlugin reads the agent's uptime section or the SNMP system uptime.
func uptimePlugin() *discovery.ModernPlugin {
	return &discovery.ModernPlugin{
		PluginName:   "uptime",
		SectionNames: []string{"uptime", "snmp_uptime"},
		ServiceName:  "Uptime",
		DiscoveryFunction: func(_ context.Context, sections models.Sections, _ interface{}) ([]discovery.ServiceCandidate, error) {
			if !sections.Has("uptime") && !sections.Has("snmp_uptime") {
				return nil, nil
			}

			return []discovery.ServiceCandidate{{
				Parameters:    models.Literal(nil),
				ServiceLabels: models.ServiceLabels{},
			}}, nil
		},
	}
}
