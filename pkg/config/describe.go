package config

import (
	"fmt"
	"strings"

	"github.com/carverauto/autochecks/pkg/models"
)

const managementPrefix = "Management Interface: "

// illegalServiceChars are stripped from service descriptions.
const illegalServiceChars = ";'`\"\\\t\n\r"

// ServiceDescription renders the description template of plugin for item.
func (w *World) ServiceDescription(_ string, plugin models.CheckPluginName, item models.Item) (string, error) {
	if w.catalog == nil {
		return "", ErrNotBound
	}

	template, known := w.catalog.ServiceNameTemplate(plugin)
	if !known {
		description := "Unimplemented check " + string(plugin)
		if item.Valid {
			description += " / " + item.Value
		}

		return sanitizeDescription(description)
	}

	description, err := renderTemplate(template, item)
	if err != nil {
		return "", fmt.Errorf("%s: %w", plugin, err)
	}

	if plugin.IsManagement() {
		description = managementPrefix + description
	}

	return sanitizeDescription(description)
}

func renderTemplate(template string, item models.Item) (string, error) {
	if !strings.Contains(template, "%s") {
		if !item.Valid {
			return template, nil
		}

		template += " %s"
	}

	if !item.Valid {
		return "", ErrMissingItem
	}

	return strings.Replace(template, "%s", item.Value, 1), nil
}

func sanitizeDescription(description string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalServiceChars, r) {
			return -1
		}

		return r
	}, description)

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", ErrEmptyDescription
	}

	return cleaned, nil
}
