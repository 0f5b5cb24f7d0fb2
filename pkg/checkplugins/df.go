package checkplugins

import (
	"context"
	"sort"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/models"
)

func filesystemPlugin() *discovery.ModernPlugin {
	return &discovery.ModernPlugin{
		PluginName:   "df",
		SectionNames: []string{"df"},
		ServiceName:  "Filesystem %s",
		DefaultParameters: map[string]interface{}{
			"levels":      []interface{}{80.0, 90.0},
			"trend_range": 24,
		},
		DiscoveryDefaultParameters: map[string]interface{}{
			"ignore_fs_types": []interface{}{"tmpfs", "devtmpfs", "squashfs", "overlay", "nsfs"},
		},
		DiscoveryFunction: discoverFilesystems,
	}
}

// discoverFilesystems emits one service per mount point of the df section.
// Entries are either plain mount points or records with mountpoint and fs_type.
func discoverFilesystems(_ context.Context, sections models.Sections, params interface{}) ([]discovery.ServiceCandidate, error) {
	ignored := make(map[string]bool)

	if p, ok := params.(map[string]interface{}); ok {
		for _, fsType := range asStrings(p["ignore_fs_types"]) {
			ignored[fsType] = true
		}
	}

	seen := make(map[string]string)

	list, _ := sections["df"].([]interface{})
	for _, raw := range list {
		var mountpoint, fsType string

		switch entry := raw.(type) {
		case string:
			mountpoint = entry
		case map[string]interface{}:
			mountpoint = asString(entry["mountpoint"])
			fsType = asString(entry["fs_type"])
		}

		if mountpoint == "" || ignored[fsType] {
			continue
		}

		seen[mountpoint] = fsType
	}

	mountpoints := make([]string, 0, len(seen))
	for mp := range seen {
		mountpoints = append(mountpoints, mp)
	}

	sort.Strings(mountpoints)

	out := make([]discovery.ServiceCandidate, 0, len(mountpoints))

	for _, mp := range mountpoints {
		labels := models.ServiceLabels{}
		if fsType := seen[mp]; fsType != "" {
			labels["fs_type"] = fsType
		}

		out = append(out, discovery.ServiceCandidate{
			Item:          models.SomeItem(mp),
			Parameters:    models.Literal(nil),
			ServiceLabels: labels,
		})
	}

	return out, nil
}
