package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/autochecks/pkg/models"
)

func svc(plugin models.CheckPluginName, item string, params interface{}) models.Service {
	s := models.Service{CheckPluginName: plugin, Parameters: models.Literal(params)}
	if item != "" {
		s.Item = models.SomeItem(item)
	}

	return s
}

func serviceIDs(services []models.Service) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.ID().String())
	}

	return out
}

func TestQualifyServices(t *testing.T) {
	tests := []struct {
		name         string
		preexisting  []models.Service
		current      []models.Service
		wantNew      []string
		wantOld      []string
		wantVanished []string
	}{
		{
			name:        "new service appears",
			preexisting: []models.Service{svc("uptime", "", nil)},
			current:     []models.Service{svc("uptime", "", nil), svc("if", "eth0", nil)},
			wantNew:     []string{"if[eth0]"},
			wantOld:     []string{"uptime"},
		},
		{
			name:         "service disappears",
			preexisting:  []models.Service{svc("uptime", "", nil), svc("if", "eth0", nil)},
			current:      []models.Service{svc("uptime", "", nil)},
			wantOld:      []string{"uptime"},
			wantVanished: []string{"if[eth0]"},
		},
		{
			name:    "nothing persisted",
			current: []models.Service{svc("df", "/", nil)},
			wantNew: []string{"df[/]"},
		},
		{
			name:         "nothing discovered",
			preexisting:  []models.Service{svc("df", "/", nil)},
			wantVanished: []string{"df[/]"},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Qualify(tt.preexisting, tt.current, models.Service.ID)

			assert.ElementsMatch(t, tt.wantNew, serviceIDs(q.New))
			assert.ElementsMatch(t, tt.wantOld, serviceIDs(q.Old))
			assert.ElementsMatch(t, tt.wantVanished, serviceIDs(q.Vanished))
			assert.ElementsMatch(t, append(append([]string{}, tt.wantOld...), tt.wantNew...), serviceIDs(q.Present))
		})
	}
}

func TestQualifyFreshValuesWin(t *testing.T) {
	q := Qualify(
		[]models.Service{svc("df", "/", "persisted")},
		[]models.Service{svc("df", "/", "fresh")},
		models.Service.ID,
	)

	if assert.Len(t, q.Old, 1) {
		assert.Equal(t, "fresh", q.Old[0].Parameters.Value())
	}
}

func TestQualifyDuplicatesCollapseToLast(t *testing.T) {
	q := Qualify(
		[]models.Service{svc("df", "/", 1), svc("if", "1", nil), svc("df", "/", 2)},
		[]models.Service{svc("if", "1", "a"), svc("if", "1", "b")},
		models.Service.ID,
	)

	assert.Equal(t, []string{"df[/]", "if[1]"}, serviceIDs(q.Preexisting))
	assert.EqualValues(t, 2, q.Preexisting[0].Parameters.Value())
	assert.Equal(t, []string{"if[1]"}, serviceIDs(q.Old))
	assert.Equal(t, "b", q.Old[0].Parameters.Value())
	assert.Equal(t, []string{"df[/]"}, serviceIDs(q.Vanished))
}

func TestQualifyIsIdempotent(t *testing.T) {
	first := Qualify(
		[]models.Service{svc("uptime", "", nil)},
		[]models.Service{svc("uptime", "", nil), svc("if", "eth0", nil)},
		models.Service.ID,
	)

	second := Qualify(first.Present, first.Current, models.Service.ID)

	assert.Empty(t, second.New)
	assert.Empty(t, second.Vanished)
	assert.ElementsMatch(t, []string{"uptime", "if[eth0]"}, serviceIDs(second.Old))
}

func TestQualifyHostLabels(t *testing.T) {
	q := Qualify(
		[]models.HostLabel{{Name: "os", Value: "linux"}, {Name: "rack", Value: "r1"}},
		[]models.HostLabel{{Name: "os", Value: "windows"}, {Name: "site", Value: "ber"}},
		models.HostLabelName,
	)

	assert.Equal(t, []models.HostLabel{{Name: "site", Value: "ber"}}, q.New)
	assert.Equal(t, []models.HostLabel{{Name: "os", Value: "windows"}}, q.Old)
	assert.Equal(t, []models.HostLabel{{Name: "rack", Value: "r1"}}, q.Vanished)
}

func TestChainOrder(t *testing.T) {
	q := Qualify(
		[]models.Service{svc("a", "", nil), svc("b", "", nil)},
		[]models.Service{svc("b", "", nil), svc("c", "", nil)},
		models.Service.ID,
	)

	var got []string
	for _, qs := range q.Chain() {
		got = append(got, string(qs.Transition)+":"+qs.Value.ID().String())
	}

	assert.Equal(t, []string{"vanished:a", "old:b", "new:c"}, got)
}
