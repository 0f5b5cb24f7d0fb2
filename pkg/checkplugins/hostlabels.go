package checkplugins

import (
	"sort"
	"strings"

	"github.com/carverauto/autochecks/pkg/models"
)

// deviceTypes maps sysDescr keywords to device types, first match wins.
var deviceTypes = []struct{ keyword, deviceType string }{ //nolint:gochecknoglobals // lookup table
	{"firewall", "firewall"},
	{"switch", "switch"},
	{"router", "router"},
	{"printer", "printer"},
	{"ups", "ups"},
	{"linux", "linux"},
	{"windows", "windows"},
}

// snmpInfoHostLabels guesses the device type from sysDescr.
func snmpInfoHostLabels(content interface{}) ([]models.HostLabel, error) {
	var descr string

	switch v := content.(type) {
	case string:
		descr = v
	case map[string]interface{}:
		descr = asString(v["descr"])
	}

	lower := strings.ToLower(descr)

	for _, dt := range deviceTypes {
		if strings.Contains(lower, dt.keyword) {
			return []models.HostLabel{{Name: "cmk/device_type", Value: dt.deviceType}}, nil
		}
	}

	return nil, nil
}

// agentHostLabels turns the agent's labels section, a name to value map, into host labels.
func agentHostLabels(content interface{}) ([]models.HostLabel, error) {
	m, ok := content.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]models.HostLabel, 0, len(names))
	for _, name := range names {
		out = append(out, models.HostLabel{Name: name, Value: asString(m[name])})
	}

	return out, nil
}
