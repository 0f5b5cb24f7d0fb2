package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/models"
)

func seedWeb01(t *testing.T, f *fixture) {
	t.Helper()

	f.persist(t, "web01", entryOf("uptime", ""), entryOf("if", "eth1"))
	f.setSections("web01", models.Sections{
		"uptime": "up",
		"df":     []string{"/"},
		"labels": map[string]string{"os": "linux"},
	})

	store, err := autochecks.NewHostLabelsStore(f.labelsDir, "web01")
	require.NoError(t, err)
	require.NoError(t, store.Save([]models.HostLabel{{Name: "rack", Value: "r1", Plugin: "labels"}}))
}

func storedLabelNames(t *testing.T, f *fixture, host string) []string {
	t.Helper()

	store, err := autochecks.NewHostLabelsStore(f.labelsDir, host)
	require.NoError(t, err)

	labels, err := store.Load()
	require.NoError(t, err)

	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}

	return names
}

func TestDiscoverOnHostModes(t *testing.T) {
	tests := []struct {
		mode          models.DiscoveryMode
		want          models.DiscoveryResult
		wantPersisted []string
		wantLabels    []string
	}{
		{
			mode: models.ModeNew,
			want: models.DiscoveryResult{
				SelfNew: 1, SelfKept: 2, SelfTotal: 3,
				SelfNewHostLabels: 1, SelfTotalHostLabels: 1,
				DiffText: "Added service Filesystem /",
			},
			wantPersisted: []string{"df[/]", "if[eth1]", "uptime"},
			wantLabels:    []string{"os", "rack"},
		},
		{
			mode: models.ModeRemove,
			want: models.DiscoveryResult{
				SelfRemoved: 1, SelfKept: 1, SelfTotal: 1,
				DiffText: "Removed service Interface eth1",
			},
			wantPersisted: []string{"uptime"},
			wantLabels:    []string{"rack"},
		},
		{
			mode: models.ModeFixAll,
			want: models.DiscoveryResult{
				SelfNew: 1, SelfRemoved: 1, SelfKept: 1, SelfTotal: 2,
				SelfNewHostLabels: 1, SelfTotalHostLabels: 1,
				DiffText: "Removed service Interface eth1\nAdded service Filesystem /",
			},
			wantPersisted: []string{"df[/]", "uptime"},
			wantLabels:    []string{"os"},
		},
		{
			mode: models.ModeRefresh,
			want: models.DiscoveryResult{
				SelfNew: 2, SelfRemoved: 2, SelfTotal: 2,
				SelfNewHostLabels: 1, SelfTotalHostLabels: 1,
				DiffText: "Removed service Interface eth1\nAdded service Filesystem /",
			},
			wantPersisted: []string{"df[/]", "uptime"},
			wantLabels:    []string{"os"},
		},
		{
			mode: models.ModeOnlyHostLabels,
			want: models.DiscoveryResult{
				SelfNewHostLabels: 1, SelfTotalHostLabels: 1,
			},
			wantPersisted: []string{"if[eth1]", "uptime"},
			wantLabels:    []string{"os"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			f := newFixture(t)
			seedWeb01(t, f)

			f.publisher.EXPECT().
				PublishHostDiscovered(gomock.Any(), "web01", tt.mode, gomock.Any()).
				Return(nil)

			result := f.resolver.DiscoverOnHost(context.Background(), "web01", Request{Mode: tt.mode, OnError: models.OnErrorRaise})
			require.Nil(t, result.ErrorText)

			assert.Equal(t, tt.want, *result)
			assert.Equal(t, tt.wantPersisted, f.persisted(t, "web01"))
			assert.Equal(t, tt.wantLabels, storedLabelNames(t, f, "web01"))
		})
	}
}

func TestDiscoverOnHostFilters(t *testing.T) {
	f := newFixture(t)
	seedWeb01(t, f)

	f.publisher.EXPECT().PublishHostDiscovered(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	filters, err := NewServiceFilters(&models.RediscoveryParams{
		ServiceFilters: &models.ServiceFilterSettings{
			Dedicated: &models.FilterLists{
				ServiceBlacklist:         []string{"Filesystem"},
				VanishedServiceWhitelist: []string{"Interface"},
			},
		},
	})
	require.NoError(t, err)

	result := f.resolver.DiscoverOnHost(context.Background(), "web01", Request{Mode: models.ModeFixAll, Filters: filters})
	require.Nil(t, result.ErrorText)

	assert.Equal(t, 0, result.SelfNew)
	assert.Equal(t, 1, result.SelfRemoved)
	assert.Equal(t, []string{"uptime"}, f.persisted(t, "web01"))
}

func TestDiscoverOnHostIsIdempotent(t *testing.T) {
	f := newFixture(t)
	seedWeb01(t, f)

	f.publisher.EXPECT().PublishHostDiscovered(gomock.Any(), "web01", models.ModeFixAll, gomock.Any()).Return(nil).Times(2)

	first := f.resolver.DiscoverOnHost(context.Background(), "web01", Request{Mode: models.ModeFixAll})
	require.True(t, first.SomethingChanged())

	second := f.resolver.DiscoverOnHost(context.Background(), "web01", Request{Mode: models.ModeFixAll})
	require.Nil(t, second.ErrorText)
	assert.False(t, second.SomethingChanged())
	assert.Equal(t, "Nothing was changed.", second.DiffText)

	services, err := f.resolver.ServicesByTransition(context.Background(), "web01", Options{})
	require.NoError(t, err)
	assert.Equal(t, map[models.Transition][]string{
		models.TransitionOld: {"df[/]", "uptime"},
	}, idsByTransition(services))
}

func TestDiscoverOnHostInactiveHost(t *testing.T) {
	f := newFixture(t)
	f.hosts.inactive["gone"] = true

	result := f.resolver.DiscoverOnHost(context.Background(), "gone", Request{Mode: models.ModeNew})
	require.NotNil(t, result.ErrorText)
	assert.Empty(t, *result.ErrorText)
	assert.True(t, result.Failed())
}

func TestDiscoverOnHostErrors(t *testing.T) {
	t.Run("plugin error raised", func(t *testing.T) {
		f := newFixture(t)
		f.setSections("web01", models.Sections{"crash": "x"})
		f.publisher.EXPECT().PublishHostDiscovered(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		result := f.resolver.DiscoverOnHost(context.Background(), "web01", Request{Mode: models.ModeNew, OnError: models.OnErrorRaise})
		require.NotNil(t, result.ErrorText)
		assert.Contains(t, *result.ErrorText, "plugin crashed")
	})

	t.Run("corrupt autochecks", func(t *testing.T) {
		f := newFixture(t)

		store, err := f.manager.Store("web01")
		require.NoError(t, err)
		require.NoError(t, writeRaw(store.Path(), "{"))

		f.publisher.EXPECT().PublishHostDiscovered(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		result := f.resolver.DiscoverOnHost(context.Background(), "web01", Request{Mode: models.ModeNew})
		require.NotNil(t, result.ErrorText)
		assert.Contains(t, *result.ErrorText, "corrupt")
	})
}

func TestDiscoverOnHostCluster(t *testing.T) {
	f := newFixture(t)
	f.hosts.clusters["dbcluster"] = []string{"node1", "node2"}
	f.hosts.clustered["MSSQL DB"] = "dbcluster"
	f.hosts.clustered["MSSQL LOG"] = "dbcluster"
	f.hosts.clustered["MSSQL TMP"] = "dbcluster"

	f.setSections("node1", models.Sections{"mssql": []string{"DB", "TMP"}, "df": []string{"/"}})
	f.persist(t, "node1", entryOf("df", "/"))
	f.persist(t, "node2", entryOf("mssql", "DB"), entryOf("mssql", "LOG"))

	f.publisher.EXPECT().PublishHostDiscovered(gomock.Any(), "dbcluster", models.ModeFixAll, gomock.Any()).Return(nil)

	result := f.resolver.DiscoverOnHost(context.Background(), "dbcluster", Request{Mode: models.ModeFixAll})
	require.Nil(t, result.ErrorText)

	assert.Equal(t, 1, result.SelfNew)
	assert.Equal(t, 1, result.SelfKept)
	assert.Equal(t, 1, result.SelfRemoved)
	assert.Equal(t, []string{"df[/]", "mssql[DB]", "mssql[TMP]"}, f.persisted(t, "node1"))
	assert.Equal(t, []string{"mssql[DB]", "mssql[TMP]"}, f.persisted(t, "node2"))
}

func TestDiscoverOnHostRefreshCluster(t *testing.T) {
	f := newFixture(t)
	f.hosts.clusters["dbcluster"] = []string{"node1"}
	f.hosts.clustered["MSSQL DB"] = "dbcluster"
	f.persist(t, "node1", entryOf("df", "/"), entryOf("mssql", "DB"))

	f.publisher.EXPECT().PublishHostDiscovered(gomock.Any(), "dbcluster", models.ModeRefresh, gomock.Any()).Return(nil)

	result := f.resolver.DiscoverOnHost(context.Background(), "dbcluster", Request{Mode: models.ModeRefresh})
	require.Nil(t, result.ErrorText)

	assert.Equal(t, 1, result.SelfRemoved)
	assert.Equal(t, []string{"df[/]"}, f.persisted(t, "node1"), "node-owned services survive a cluster refresh")
}
