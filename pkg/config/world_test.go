package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/autochecks/pkg/logger"
	"github.com/carverauto/autochecks/pkg/models"
)

type catalogEntry struct {
	template string
	defaults map[string]interface{}
}

type fakeCatalog map[models.CheckPluginName]catalogEntry

func (c fakeCatalog) ServiceNameTemplate(name models.CheckPluginName) (string, bool) {
	e, ok := c[name.BaseName()]
	return e.template, ok
}

func (c fakeCatalog) CheckDefaults(name models.CheckPluginName) map[string]interface{} {
	return c[name.BaseName()].defaults
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func testWorld(t *testing.T) *World {
	t.Helper()

	w := &World{
		Hosts: map[string]*HostSpec{
			"web01": {
				StaticChecks: []StaticCheck{
					{Plugin: "df", Item: strPtr("/boot"), Parameters: map[string]interface{}{"levels": []interface{}{70, 80}}},
					{Plugin: "df"},
				},
				CustomChecks: []models.CustomCheck{{Description: "Backup", CommandLine: "check_backup"}},
			},
			"node1":  {},
			"node2":  {},
			"pinger": {PingOnly: true},
			"off":    {Disabled: true},
		},
		Clusters: map[string]*ClusterSpec{
			"dbcluster": {Nodes: []string{"node1", "node2"}, ClusteredServices: []string{"MSSQL", "Filesystem /data"}},
			"zcluster":  {Nodes: []string{"node2"}, ClusteredServices: []string{"MSSQL"}},
		},
		Variables: map[string]interface{}{"factor": 2},
		Rules: Rules{
			CheckParameters: []ParameterRule{
				{Plugin: "df", Hosts: []string{"web01"}, Items: []string{"/boot"}, Value: map[string]interface{}{"magic": 0.8}},
				{Plugin: "df", Value: map[string]interface{}{"magic": 0.5, "trend": true}},
				{Plugin: "df", HostRegex: []string{"node"}, Value: map[string]interface{}{"inodes": false}},
			},
			DiscoveryParameters: []DiscoveryRule{
				{Plugin: "if", Hosts: []string{"sw01"}, Value: map[string]interface{}{"admin_state": "up"}},
				{Plugin: "if", Value: "default"},
			},
			IgnoredServices: []IgnoredServicesRule{
				{HostRegex: []string{"web"}, Services: []string{"Filesystem /tmp"}},
			},
			IgnoredPlugins: []IgnoredPluginsRule{
				{Hosts: []string{"node1"}, Plugins: []string{"uptime"}},
			},
			DiscoveryCheck: []DiscoveryCheckRule{
				{Hosts: []string{"off"}},
				{Value: &models.DiscoveryCheckParams{}},
			},
		},
	}

	require.NoError(t, w.Validate())
	require.NoError(t, w.Bind(fakeCatalog{
		"df":     {template: "Filesystem %s", defaults: map[string]interface{}{"levels": []interface{}{80, 90}, "trend": false}},
		"uptime": {template: "Uptime"},
		"if":     {template: "Interface %s"},
		"ps":     {template: "Process"},
		"empty":  {template: "  ;"},
	}, nil, logger.NewTestLogger()))

	return w
}

func TestServiceDescription(t *testing.T) {
	w := testWorld(t)

	tests := []struct {
		name    string
		plugin  models.CheckPluginName
		item    models.Item
		want    string
		wantErr error
	}{
		{name: "template with item", plugin: "df", item: models.SomeItem("/var"), want: "Filesystem /var"},
		{name: "template without item", plugin: "uptime", item: models.NoItem(), want: "Uptime"},
		{name: "item appended", plugin: "ps", item: models.SomeItem("sshd"), want: "Process sshd"},
		{name: "missing item", plugin: "df", item: models.NoItem(), wantErr: ErrMissingItem},
		{name: "management board", plugin: "mgmt_if", item: models.SomeItem("1"), want: "Management Interface: Interface 1"},
		{name: "unknown plugin", plugin: "nope", item: models.SomeItem("x"), want: "Unimplemented check nope / x"},
		{name: "unknown plugin without item", plugin: "nope", want: "Unimplemented check nope"},
		{name: "illegal characters", plugin: "df", item: models.SomeItem("C:\\ 'data';"), want: "Filesystem C: data"},
		{name: "empty after cleanup", plugin: "empty", wantErr: ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := w.ServiceDescription("web01", tt.plugin, tt.item)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeCheckParameters(t *testing.T) {
	w := testWorld(t)

	t.Run("first matching rule wins", func(t *testing.T) {
		got, err := w.ComputeCheckParameters("web01", "df", models.SomeItem("/boot"), models.Literal(nil))
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"levels": []interface{}{80, 90},
			"trend":  true,
			"magic":  0.8,
		}, got)
	})

	t.Run("discovered overlays defaults", func(t *testing.T) {
		got, err := w.ComputeCheckParameters("node1", "df", models.SomeItem("/"),
			models.Literal(map[string]interface{}{"levels": []interface{}{50, 60}}))
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"levels": []interface{}{int64(50), int64(60)},
			"trend":  true,
			"magic":  0.5,
			"inodes": false,
		}, got)
	})

	t.Run("deferred expression sees vars", func(t *testing.T) {
		got, err := w.ComputeCheckParameters("node2", "if", models.SomeItem("eth0"),
			models.Deferred(`{port: vars.item, speed: vars.factor * 1000}`))
		require.NoError(t, err)

		m, ok := got.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "eth0", m["port"])
		assert.EqualValues(t, 2000, m["speed"])
	})

	t.Run("unknown plugin", func(t *testing.T) {
		got, err := w.ComputeCheckParameters("web01", "nope", models.NoItem(), models.Literal(map[string]interface{}{"a": 1}))
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestHostOfClusteredService(t *testing.T) {
	w := testWorld(t)

	tests := []struct {
		host, description, want string
	}{
		{"node1", "MSSQL DB", "dbcluster"},
		{"node2", "MSSQL DB", "dbcluster"},
		{"node1", "Filesystem /data", "dbcluster"},
		{"node1", "Filesystem /", "node1"},
		{"node1", "My MSSQL", "node1"},
		{"web01", "MSSQL DB", "web01"},
	}

	for _, tt := range tests {
		got, err := w.HostOfClusteredService(tt.host, tt.description)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s on %s", tt.description, tt.host)
	}
}

func TestHostFacts(t *testing.T) {
	w := testWorld(t)

	assert.True(t, w.IsActive("web01"))
	assert.True(t, w.IsActive("dbcluster"))
	assert.False(t, w.IsActive("off"))
	assert.False(t, w.IsActive("ghost"))
	assert.True(t, w.Exists("off"))
	assert.False(t, w.Exists("ghost"))
	assert.True(t, w.IsCluster("dbcluster"))
	assert.True(t, w.IsPingHost("pinger"))
	assert.False(t, w.IsPingHost("web01"))

	assert.True(t, w.ServiceIgnored("web01", "df", "Filesystem /tmp"))
	assert.False(t, w.ServiceIgnored("node1", "df", "Filesystem /tmp"))
	assert.True(t, w.ServiceIgnored("node1", "uptime", "Uptime"))
	assert.True(t, w.CheckPluginIgnored("node1", "mgmt_uptime"))
	assert.False(t, w.CheckPluginIgnored("node2", "uptime"))

	assert.Equal(t, map[string]interface{}{"admin_state": "up"}, w.DiscoveryParameters("sw01", "if"))
	assert.Equal(t, "default", w.DiscoveryParameters("web01", "if"))
	assert.Nil(t, w.DiscoveryParameters("web01", "df"))

	assert.Nil(t, w.DiscoveryCheckParameters("off"))
	assert.NotNil(t, w.DiscoveryCheckParameters("web01"))

	assert.Equal(t, []models.CustomCheck{{Description: "Backup", CommandLine: "check_backup"}}, w.CustomChecks("web01"))
}

func TestDiscoveryCheckParametersDefaults(t *testing.T) {
	w := &World{
		Hosts: map[string]*HostSpec{"web01": {}, "db01": {}, "off": {}},
		Rules: Rules{
			DiscoveryCheck: []DiscoveryCheckRule{
				{Hosts: []string{"off"}},
				{Hosts: []string{"web01"}, Value: &models.DiscoveryCheckParams{SeverityUnmonitored: intPtr(2)}},
			},
		},
	}
	require.NoError(t, w.Validate())

	assert.Nil(t, w.DiscoveryCheckParameters("off"), "a rule without value disables the check")
	assert.Equal(t, 2, w.DiscoveryCheckParameters("web01").UnmonitoredSeverity())

	defaults := w.DiscoveryCheckParameters("db01")
	require.NotNil(t, defaults)
	assert.Equal(t, &models.DiscoveryCheckParams{}, defaults)
	assert.Equal(t, 1, defaults.UnmonitoredSeverity())
	assert.Equal(t, 0, defaults.VanishedSeverity())
	assert.Equal(t, 1, defaults.NewHostLabelSeverity())
	assert.False(t, defaults.InventoryRediscovery.Enabled())
}

func TestStaticChecks(t *testing.T) {
	w := testWorld(t)

	got, err := w.StaticChecks("web01")
	require.NoError(t, err)
	require.Len(t, got, 1, "the item-less df check has no description and is skipped")

	assert.Equal(t, "Filesystem /boot", got[0].Description)
	assert.Nil(t, got[0].DiscoveredParameters)
	assert.Equal(t, map[string]interface{}{
		"levels": []interface{}{int64(70), int64(80)},
		"trend":  true,
		"magic":  0.8,
	}, got[0].Parameters)
}

func TestWorldValidate(t *testing.T) {
	w := &World{
		Hosts:    map[string]*HostSpec{"a": {}},
		Clusters: map[string]*ClusterSpec{"a": {}},
	}
	require.ErrorIs(t, w.Validate(), errHostIsCluster)

	w = &World{Rules: Rules{IgnoredServices: []IgnoredServicesRule{{Services: []string{"("}}}}}
	require.ErrorIs(t, w.Validate(), errInvalidPattern)

	_, err := (&World{}).ServiceDescription("x", "df", models.NoItem())
	require.ErrorIs(t, err, ErrNotBound)
}
