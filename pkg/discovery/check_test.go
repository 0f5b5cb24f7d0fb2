package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/autochecks/pkg/models"
)

func intPtr(v int) *int { return &v }

func TestCheckDiscovery(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(f *fixture)
		wantState   int
		wantSummary string
	}{
		{
			name: "changes schedule rediscovery",
			setup: func(f *fixture) {
				f.hosts.checkParams["web01"] = &models.DiscoveryCheckParams{
					InventoryRediscovery: &models.RediscoveryParams{Mode: models.ModeNew},
				}
				f.marker.EXPECT().Add("web01").Return(nil)
				f.publisher.EXPECT().PublishRediscoveryScheduled(gomock.Any(), "web01", gomock.Any()).Return(nil)
			},
			wantState: StateWarn,
			wantSummary: "2 unmonitored services (df:2), 1 vanished services (if:1), " +
				"1 new host labels, rediscovery scheduled",
		},
		{
			name: "no rediscovery configured",
			setup: func(f *fixture) {
				f.hosts.checkParams["web01"] = &models.DiscoveryCheckParams{SeverityVanished: intPtr(2)}
			},
			wantState:   StateCrit,
			wantSummary: "2 unmonitored services (df:2), 1 vanished services (if:1), 1 new host labels",
		},
		{
			name: "default parameters",
			setup: func(f *fixture) {
				f.hosts.checkParams["web01"] = &models.DiscoveryCheckParams{}
			},
			wantState:   StateWarn,
			wantSummary: "2 unmonitored services (df:2), 1 vanished services (if:1), 1 new host labels",
		},
		{
			name: "mode remove ignores new services",
			setup: func(f *fixture) {
				f.hosts.checkParams["web01"] = &models.DiscoveryCheckParams{
					SeverityUnmonitored:  intPtr(0),
					SeverityNewHostLabel: intPtr(0),
					InventoryRediscovery: &models.RediscoveryParams{
						Mode:             models.ModeRemove,
						ServiceWhitelist: []string{"Filesystem"},
					},
				}
			},
			wantState:   StateOK,
			wantSummary: "2 unmonitored services (df:2), 1 vanished services (if:1), 1 new host labels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.persist(t, "web01", entryOf("if", "eth1"))
			f.setSections("web01", models.Sections{
				"df":     []string{"/", "/var"},
				"labels": map[string]string{"os": "linux"},
			})
			tt.setup(f)

			result := f.resolver.CheckDiscovery(context.Background(), "web01")

			assert.Equal(t, tt.wantState, result.State)
			assert.Equal(t, tt.wantSummary, result.Summary)
			assert.Len(t, result.Details, 3)
		})
	}
}

func TestCheckDiscoveryUpToDate(t *testing.T) {
	f := newFixture(t)
	f.hosts.checkParams["web01"] = &models.DiscoveryCheckParams{
		InventoryRediscovery: &models.RediscoveryParams{Mode: models.ModeFixAll},
	}
	f.persist(t, "web01", entryOf("df", "/"))
	f.setSections("web01", models.Sections{"df": []string{"/"}})

	result := f.resolver.CheckDiscovery(context.Background(), "web01")

	assert.Equal(t, StateOK, result.State)
	assert.Equal(t, "no unmonitored services found, no vanished services found, no new host labels", result.Summary)
	assert.Empty(t, result.Details)
}

func TestCheckDiscoveryClusterFlagsNodes(t *testing.T) {
	f := newFixture(t)
	f.hosts.clusters["dbcluster"] = []string{"node1", "node2"}
	f.hosts.clustered["MSSQL DB"] = "dbcluster"
	f.hosts.checkParams["dbcluster"] = &models.DiscoveryCheckParams{
		InventoryRediscovery: &models.RediscoveryParams{Mode: models.ModeFixAll},
	}
	f.setSections("node1", models.Sections{"mssql": []string{"DB"}})

	gomock.InOrder(
		f.marker.EXPECT().Add("node1").Return(nil),
		f.marker.EXPECT().Add("node2").Return(nil),
	)
	f.publisher.EXPECT().PublishRediscoveryScheduled(gomock.Any(), "dbcluster", gomock.Any()).Return(nil)

	result := f.resolver.CheckDiscovery(context.Background(), "dbcluster")

	assert.Equal(t, StateWarn, result.State)
	assert.Contains(t, result.Summary, "1 unmonitored services (mssql:1)")
	assert.Contains(t, result.Summary, "rediscovery scheduled")
}

func TestCheckDiscoveryFailures(t *testing.T) {
	t.Run("disabled by rule", func(t *testing.T) {
		f := newFixture(t)

		result := f.resolver.CheckDiscovery(context.Background(), "web01")
		assert.Equal(t, StateUnknown, result.State)
		assert.Contains(t, result.Summary, ErrDiscoveryDisabled.Error())
	})

	t.Run("plugin error", func(t *testing.T) {
		f := newFixture(t)
		f.hosts.checkParams["web01"] = &models.DiscoveryCheckParams{}
		f.setSections("web01", models.Sections{"crash": "x"})

		result := f.resolver.CheckDiscovery(context.Background(), "web01")
		assert.Equal(t, StateUnknown, result.State)
		assert.Contains(t, result.Summary, "plugin crashed")
	})
}
