package autochecks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/carverauto/autochecks/pkg/models"
)

const hostLabelsSuffix = ".json"

type storedHostLabel struct {
	Value  string `json:"value"`
	Plugin string `json:"plugin_name,omitempty"`
}

// HostLabelsStore persists the discovered host labels of one host as a JSON
// object keyed by label name.
type HostLabelsStore struct {
	path string
}

// NewHostLabelsStore returns the label store of hostname below dir.
func NewHostLabelsStore(dir, hostname string) (*HostLabelsStore, error) {
	path, err := HostPath(dir, hostname, hostLabelsSuffix)
	if err != nil {
		return nil, err
	}

	return &HostLabelsStore{path: path}, nil
}

// Load returns labels sorted by name; a missing file yields none.
func (s *HostLabelsStore) Load() ([]models.HostLabel, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.HostLabel{}, nil
		}

		return nil, fmt.Errorf("failed to read file '%s': %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.HostLabel{}, nil
	}

	var stored map[string]storedHostLabel
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptHostLabels, s.path, err)
	}

	labels := make([]models.HostLabel, 0, len(stored))
	for name, l := range stored {
		labels = append(labels, models.HostLabel{
			Name:   name,
			Value:  l.Value,
			Plugin: models.CheckPluginName(l.Plugin),
		})
	}

	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })

	return labels, nil
}

// Save replaces the stored labels. Later duplicates of a name win.
func (s *HostLabelsStore) Save(labels []models.HostLabel) error {
	stored := make(map[string]storedHostLabel, len(labels))
	for _, l := range labels {
		stored[l.Name] = storedHostLabel{Value: l.Value, Plugin: string(l.Plugin)}
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode host labels: %w", err)
	}

	return WriteFileAtomic(s.path, append(data, '\n'))
}
