package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/checktable"
	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

var (
	errNoDescription = errors.New("no description")
	errPluginCrashed = errors.New("plugin crashed")
)

// fakeHosts is an in-memory host configuration serving both the resolver and
// the check table builder.
type fakeHosts struct {
	inactive        map[string]bool
	clusters        map[string][]string
	mgmt            map[string]bool
	clustered       map[string]string // description -> owning cluster
	ignoredServices map[string]bool   // description
	ignoredPlugins  map[models.CheckPluginName]bool
	static          map[string][]models.ConfiguredService
	custom          map[string][]models.CustomCheck
	active          map[string][]models.ActiveCheck
	checkParams     map[string]*models.DiscoveryCheckParams
	discoveryParams map[models.CheckPluginName]interface{}
}

func newFakeHosts() *fakeHosts {
	return &fakeHosts{
		inactive:        map[string]bool{},
		clusters:        map[string][]string{},
		mgmt:            map[string]bool{},
		clustered:       map[string]string{},
		ignoredServices: map[string]bool{},
		ignoredPlugins:  map[models.CheckPluginName]bool{},
		static:          map[string][]models.ConfiguredService{},
		custom:          map[string][]models.CustomCheck{},
		active:          map[string][]models.ActiveCheck{},
		checkParams:     map[string]*models.DiscoveryCheckParams{},
		discoveryParams: map[models.CheckPluginName]interface{}{},
	}
}

func (f *fakeHosts) IsActive(host string) bool { return !f.inactive[host] }

func (f *fakeHosts) IsCluster(host string) bool {
	_, ok := f.clusters[host]
	return ok
}

func (f *fakeHosts) Nodes(cluster string) []string       { return f.clusters[cluster] }
func (f *fakeHosts) HasManagementBoard(host string) bool { return f.mgmt[host] }
func (f *fakeHosts) IsPingHost(string) bool              { return false }

func (f *fakeHosts) ServiceDescription(_ string, plugin models.CheckPluginName, item models.Item) (string, error) {
	prefix := ""
	if plugin.IsManagement() {
		prefix = "Management Interface: "
	}

	switch plugin.BaseName() {
	case "df":
		return prefix + "Filesystem " + item.Value, nil
	case "if":
		return prefix + "Interface " + item.Value, nil
	case "uptime":
		return prefix + "Uptime", nil
	case "mssql":
		return prefix + "MSSQL " + item.Value, nil
	case "empty":
		return "", nil
	case "broken":
		return "", errNoDescription
	default:
		return fmt.Sprintf("%s%s %s", prefix, plugin, item.Value), nil
	}
}

func (f *fakeHosts) HostOfClusteredService(host, description string) (string, error) {
	if cluster, ok := f.clustered[description]; ok {
		for _, node := range f.clusters[cluster] {
			if node == host {
				return cluster, nil
			}
		}
	}

	return host, nil
}

func (f *fakeHosts) ComputeCheckParameters(host string, _ models.CheckPluginName, _ models.Item, discovered models.Parameters) (interface{}, error) {
	return map[string]interface{}{"host": host, "discovered": discovered.Value()}, nil
}

func (f *fakeHosts) ServiceIgnored(_ string, _ models.CheckPluginName, description string) bool {
	return f.ignoredServices[description]
}

func (f *fakeHosts) CheckPluginIgnored(_ string, plugin models.CheckPluginName) bool {
	return f.ignoredPlugins[plugin]
}

func (f *fakeHosts) DiscoveryParameters(_ string, plugin models.CheckPluginName) interface{} {
	return f.discoveryParams[plugin]
}

func (f *fakeHosts) StaticChecks(host string) ([]models.ConfiguredService, error) {
	return f.static[host], nil
}

func (f *fakeHosts) CustomChecks(host string) []models.CustomCheck { return f.custom[host] }
func (f *fakeHosts) ActiveChecks(host string) []models.ActiveCheck { return f.active[host] }

func (f *fakeHosts) DiscoveryCheckParameters(host string) *models.DiscoveryCheckParams {
	return f.checkParams[host]
}

// itemsPlugin discovers one service per string in its section.
func itemsPlugin(name models.CheckPluginName, template string) *ModernPlugin {
	section := string(name)

	return &ModernPlugin{
		PluginName:   name,
		SectionNames: []string{section},
		ServiceName:  template,
		DiscoveryFunction: func(_ context.Context, sections models.Sections, params interface{}) ([]ServiceCandidate, error) {
			items, _ := sections[section].([]string)
			out := make([]ServiceCandidate, 0, len(items))

			for _, it := range items {
				out = append(out, ServiceCandidate{
					Item:          models.SomeItem(it),
					Parameters:    models.Literal(map[string]interface{}{"seen": it, "rule": params}),
					ServiceLabels: models.ServiceLabels{"origin": section},
				})
			}

			return out, nil
		},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()

	require.NoError(t, r.Register(itemsPlugin("df", "Filesystem %s")))
	require.NoError(t, r.Register(itemsPlugin("mssql", "MSSQL %s")))
	require.NoError(t, r.Register(itemsPlugin("broken", "Broken %s")))
	require.NoError(t, r.Register(itemsPlugin("empty", "")))
	require.NoError(t, r.Register(&LegacyPlugin{
		PluginName:  "if",
		Section:     "if",
		ServiceName: "Interface %s",
		InventoryFunction: func(info interface{}) ([]LegacyDiscoveryItem, error) {
			ports, _ := info.([]string)
			out := make([]LegacyDiscoveryItem, 0, len(ports))

			for _, p := range ports {
				out = append(out, LegacyDiscoveryItem{Item: models.SomeItem(p), Parameters: "{state: 1}"})
			}

			return out, nil
		},
	}))
	require.NoError(t, r.Register(&ModernPlugin{
		PluginName:   "uptime",
		SectionNames: []string{"uptime"},
		ServiceName:  "Uptime",
		DiscoveryFunction: func(context.Context, models.Sections, interface{}) ([]ServiceCandidate, error) {
			return []ServiceCandidate{{Parameters: models.Literal(nil)}}, nil
		},
	}))
	require.NoError(t, r.Register(&ModernPlugin{
		PluginName:   "crash",
		SectionNames: []string{"crash"},
		ServiceName:  "Crash",
		DiscoveryFunction: func(context.Context, models.Sections, interface{}) ([]ServiceCandidate, error) {
			return nil, errPluginCrashed
		},
	}))
	require.NoError(t, r.RegisterHostLabels("snmp_info", func(content interface{}) ([]models.HostLabel, error) {
		descr, _ := content.(string)
		return []models.HostLabel{{Name: "device", Value: strings.ToLower(descr)}}, nil
	}))
	require.NoError(t, r.RegisterHostLabels("labels", func(content interface{}) ([]models.HostLabel, error) {
		pairs, _ := content.(map[string]string)

		out := make([]models.HostLabel, 0, len(pairs))
		for k, v := range pairs {
			out = append(out, models.HostLabel{Name: k, Value: v})
		}

		return out, nil
	}))
	require.NoError(t, r.RegisterHostLabels("crash", func(interface{}) ([]models.HostLabel, error) {
		return nil, errPluginCrashed
	}))

	return r
}

type fixture struct {
	hosts     *fakeHosts
	sections  map[string]map[models.SourceType]models.Sections
	manager   *autochecks.Manager
	builder   *checktable.Builder
	labelsDir string
	marker    *MockMarker
	publisher *MockPublisher
	resolver  *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		hosts:     newFakeHosts(),
		sections:  map[string]map[models.SourceType]models.Sections{},
		manager:   autochecks.NewManager(t.TempDir(), logger.NewTestLogger()),
		labelsDir: t.TempDir(),
		marker:    NewMockMarker(ctrl),
		publisher: NewMockPublisher(ctrl),
	}

	f.builder = checktable.NewBuilder(f.hosts, f.manager, logger.NewTestLogger())

	fetcher := NewMockSectionFetcher(ctrl)
	fetcher.EXPECT().
		FetchSections(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, host string, source models.SourceType, _ bool) (models.Sections, error) {
			if s, ok := f.sections[host][source]; ok {
				return s, nil
			}

			return models.Sections{}, nil
		}).
		AnyTimes()

	f.resolver = NewResolver(ResolverConfig{
		Hosts:         f.hosts,
		Registry:      testRegistry(t),
		Sections:      fetcher,
		Autochecks:    f.manager,
		CheckTable:    f.builder,
		HostLabelsDir: f.labelsDir,
		Marker:        f.marker,
		Publisher:     f.publisher,
		Logger:        logger.NewTestLogger(),
	})

	return f
}

func (f *fixture) setSections(host string, sections models.Sections) {
	if f.sections[host] == nil {
		f.sections[host] = map[models.SourceType]models.Sections{}
	}

	f.sections[host][models.SourceHost] = sections
}

func (f *fixture) setMgmtSections(host string, sections models.Sections) {
	if f.sections[host] == nil {
		f.sections[host] = map[models.SourceType]models.Sections{}
	}

	f.sections[host][models.SourceManagement] = sections
	f.hosts.mgmt[host] = true
}

func (f *fixture) persist(t *testing.T, host string, entries ...models.AutocheckEntry) {
	t.Helper()

	store, err := f.manager.Store(host)
	require.NoError(t, err)
	require.NoError(t, store.Write(entries))
	f.manager.Invalidate(host)
}

func (f *fixture) persisted(t *testing.T, host string) []string {
	t.Helper()

	f.manager.Invalidate(host)

	entries, err := f.manager.RawAutochecks(host)
	require.NoError(t, err)

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID().String())
	}

	return out
}

func entryOf(plugin models.CheckPluginName, item string) models.AutocheckEntry {
	e := models.AutocheckEntry{CheckPluginName: plugin, Parameters: models.Literal("stored")}
	if item != "" {
		e.Item = models.SomeItem(item)
	}

	return e
}

// idsByTransition flattens a grouping into "transition -> [id...]".
func idsByTransition(services models.ServicesByTransition) map[models.Transition][]string {
	out := make(map[models.Transition][]string, len(services))

	for t, list := range services {
		for _, sn := range list {
			out[t] = append(out[t], sn.Service.ID().String())
		}
	}

	return out
}

func writeRaw(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
