package discovery

import (
	"fmt"
	"sort"
	"sync"

	"github.com/carverauto/autochecks/pkg/models"
)

// HostLabelFunction derives host labels from one parsed section.
type HostLabelFunction func(content interface{}) ([]models.HostLabel, error)

// Registry holds the discovery plugins and host label functions known to the process.
type Registry struct {
	mu          sync.RWMutex
	plugins     map[models.CheckPluginName]DiscoveryCapable
	hostLabelFn map[string]HostLabelFunction
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:     make(map[models.CheckPluginName]DiscoveryCapable),
		hostLabelFn: make(map[string]HostLabelFunction),
	}
}

// Register adds a plugin. Names must be valid and unique.
func (r *Registry) Register(p DiscoveryCapable) error {
	name := p.Name()
	if err := name.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}

	r.plugins[name] = p

	return nil
}

// RegisterHostLabels attaches a host label function to a section.
func (r *Registry) RegisterHostLabels(section string, fn HostLabelFunction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.hostLabelFn[section]; exists {
		return fmt.Errorf("%w: host labels of section %s", ErrDuplicatePlugin, section)
	}

	r.hostLabelFn[section] = fn

	return nil
}

// Get returns the plugin for name. Management names fall back to the base
// plugin when no dedicated management plugin is registered.
func (r *Registry) Get(name models.CheckPluginName) (DiscoveryCapable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.plugins[name]; ok {
		return p, nil
	}

	if name.IsManagement() {
		if p, ok := r.plugins[name.BaseName()]; ok {
			return managementVariant{DiscoveryCapable: p}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
}

// Has reports whether name resolves to a plugin.
func (r *Registry) Has(name models.CheckPluginName) bool {
	_, err := r.Get(name)
	return err == nil
}

// ServiceNameTemplate returns the description template of name.
func (r *Registry) ServiceNameTemplate(name models.CheckPluginName) (string, bool) {
	p, err := r.Get(name)
	if err != nil {
		return "", false
	}

	return p.ServiceNameTemplate(), true
}

// CheckDefaults returns the default check parameters of name, nil if unknown.
func (r *Registry) CheckDefaults(name models.CheckPluginName) map[string]interface{} {
	p, err := r.Get(name)
	if err != nil {
		return nil
	}

	return p.CheckDefaults()
}

// HostLabelFunction returns the host label function of section, if any.
func (r *Registry) HostLabelFunction(section string) (HostLabelFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.hostLabelFn[section]

	return fn, ok
}

// Names returns all registered plugin names, sorted.
func (r *Registry) Names() []models.CheckPluginName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]models.CheckPluginName, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// Candidates returns, sorted, the plugins with at least one of their sections
// present. Host candidates exclude management-only plugins; management
// candidates are reported under their mgmt_ name.
func (r *Registry) Candidates(hostSections, mgmtSections models.Sections) []models.CheckPluginName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := make(map[models.CheckPluginName]struct{})

	for name, p := range r.plugins {
		if !name.IsManagement() && anySection(p.Sections(), hostSections) {
			set[name] = struct{}{}
		}

		if anySection(p.Sections(), mgmtSections) {
			set[name.ManagementName()] = struct{}{}
		}
	}

	out := make([]models.CheckPluginName, 0, len(set))
	for name := range set {
		out = append(out, name)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func anySection(wanted []string, available models.Sections) bool {
	for _, s := range wanted {
		if available.Has(s) {
			return true
		}
	}

	return false
}

// sectionsFor narrows available down to what p consumes.
func sectionsFor(p DiscoveryCapable, available models.Sections) models.Sections {
	out := make(models.Sections, len(p.Sections()))

	for _, s := range p.Sections() {
		if content, ok := available[s]; ok {
			out[s] = content
		}
	}

	return out
}
