package config

import (
	"fmt"

	"github.com/carverauto/autochecks/pkg/models"
	"github.com/carverauto/autochecks/pkg/params"
)

// ComputeCheckParameters layers plugin defaults, the discovered parameters and
// the matching check parameter rules. Earlier rules take precedence.
func (w *World) ComputeCheckParameters(
	host string,
	plugin models.CheckPluginName,
	item models.Item,
	discovered models.Parameters,
) (interface{}, error) {
	if w.catalog == nil {
		return nil, ErrNotBound
	}

	if _, known := w.catalog.ServiceNameTemplate(plugin); !known {
		return nil, nil
	}

	var effective interface{}
	if defaults := w.catalog.CheckDefaults(plugin); defaults != nil {
		effective = overlay(nil, defaults)
	}

	value, err := w.evaluator.Evaluate(discovered, w.vars(host, plugin, item))
	if err != nil {
		return nil, fmt.Errorf("parameters of %s on %s: %w", plugin, host, err)
	}

	effective = overlay(effective, value)

	matching := w.matchingParameterRules(host, plugin, item)
	for i := len(matching) - 1; i >= 0; i-- {
		effective = overlay(effective, matching[i].Value)
	}

	return effective, nil
}

func (w *World) vars(host string, plugin models.CheckPluginName, item models.Item) params.Vars {
	vars := make(params.Vars, len(w.Variables)+3)
	for k, v := range w.Variables {
		vars[k] = v
	}

	vars["host"] = host
	vars["plugin"] = string(plugin)

	if item.Valid {
		vars["item"] = item.Value
	}

	return vars
}

func (w *World) matchingParameterRules(host string, plugin models.CheckPluginName, item models.Item) []ParameterRule {
	var out []ParameterRule

	for _, rule := range w.Rules.CheckParameters {
		if models.CheckPluginName(rule.Plugin) != plugin.BaseName() {
			continue
		}

		if !w.patterns.hostMatches(rule.Hosts, rule.HostRegex, host) {
			continue
		}

		if len(rule.Items) > 0 && (!item.Valid || !w.patterns.any(rule.Items, item.Value)) {
			continue
		}

		out = append(out, rule)
	}

	return out
}

// overlay merges top into base when both are maps; otherwise a non-nil top
// replaces base. The result never aliases base.
func overlay(base, top interface{}) interface{} {
	if top == nil {
		return base
	}

	topMap, topIsMap := top.(map[string]interface{})
	if !topIsMap {
		return top
	}

	merged := make(map[string]interface{}, len(topMap))

	if baseMap, ok := base.(map[string]interface{}); ok {
		for k, v := range baseMap {
			merged[k] = v
		}
	}

	for k, v := range topMap {
		merged[k] = v
	}

	return merged
}
