package models

// SourceType distinguishes data fetched from the host itself from data
// fetched from its management board.
type SourceType string

const (
	SourceHost       SourceType = "host"
	SourceManagement SourceType = "management"
)

// Sections maps parsed section names to their content.
type Sections map[string]interface{}

// Names returns the section names in no particular order.
func (s Sections) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	return names
}

// Has reports whether section name is present.
func (s Sections) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// CustomCheck is a statically configured check with a free command line.
type CustomCheck struct {
	Description string `json:"service_description" yaml:"service_description" toml:"service_description"`
	CommandLine string `json:"command_line,omitempty" yaml:"command_line,omitempty" toml:"command_line"`
}

// ActiveCheck is an active check executed by the monitoring core.
type ActiveCheck struct {
	Name        string      `json:"name" yaml:"name" toml:"name"`
	Description string      `json:"description" yaml:"description" toml:"description"`
	Parameters  interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters"`
}
