package checkplugins

import (
	"fmt"
	"strconv"

	"github.com/carverauto/autochecks/pkg/discovery"
	"github.com/carverauto/autochecks/pkg/models"
)

const operStatusUp = 1

// interfacePlugin discovers operationally up interfaces of the SNMP if
// section. Its discovered parameters pin the current state and speed as an
// expression, evaluated when the check table is built.
func interfacePlugin() *discovery.LegacyPlugin {
	return &discovery.LegacyPlugin{
		PluginName:  "if",
		Section:     "if",
		ServiceName: "Interface %s",
		DefaultParameters: map[string]interface{}{
			"errors": []interface{}{0.01, 0.1},
		},
		InventoryFunction: inventoryInterfaces,
	}
}

func inventoryInterfaces(info interface{}) ([]discovery.LegacyDiscoveryItem, error) {
	var out []discovery.LegacyDiscoveryItem

	for _, iface := range asRecords(info) {
		index, ok := asInt(iface["index"])
		if !ok {
			return nil, fmt.Errorf("interface without index: %v", iface)
		}

		oper, _ := asInt(iface["oper_status"])
		if oper != operStatusUp {
			continue
		}

		speed, _ := asInt(iface["speed"])

		out = append(out, discovery.LegacyDiscoveryItem{
			Item:       models.SomeItem(strconv.FormatInt(index, 10)),
			Parameters: fmt.Sprintf(`{state: ["%d"], speed: %d}`, oper, speed),
		})
	}

	return out, nil
}
