package autochecks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/autochecks/pkg/models"
)

func sampleEntries() []models.AutocheckEntry {
	return []models.AutocheckEntry{
		{
			CheckPluginName: "uptime",
			Parameters:      models.Literal(nil),
			ServiceLabels:   models.ServiceLabels{},
		},
		{
			CheckPluginName: "if64",
			Item:            models.SomeItem("eth0"),
			Parameters:      models.Deferred("{state: vars.state}"),
		},
		{
			CheckPluginName: "df",
			Item:            models.SomeItem("/"),
			Parameters:      models.Literal(map[string]interface{}{"levels": []interface{}{80, 90}}),
			ServiceLabels:   models.ServiceLabels{"fs": "root"},
		},
	}
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode(sampleEntries())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "autochecks_format", data)
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir(), "web01")
	require.NoError(t, err)

	entries, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir, "web01")
	require.NoError(t, err)
	require.NoError(t, store.Write(sampleEntries()))

	entries, err := store.Read()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	ids := make([]models.ServiceID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID())
	}

	assert.Equal(t, []models.ServiceID{
		{CheckPluginName: "df", Item: models.SomeItem("/")},
		{CheckPluginName: "if64", Item: models.SomeItem("eth0")},
		{CheckPluginName: "uptime"},
	}, ids)

	assert.Equal(t, models.ServiceLabels{"fs": "root"}, entries[0].ServiceLabels)
	assert.True(t, entries[1].Parameters.IsDeferred())
	assert.Equal(t, models.ServiceLabels{}, entries[2].ServiceLabels)

	written := make(map[models.ServiceID]models.Parameters)
	for _, e := range sampleEntries() {
		written[e.ID()] = e.Parameters
	}

	for _, got := range entries {
		assert.True(t, written[got.ID()].Equal(got.Parameters), "parameters of %s: %s", got.ID(), got.Parameters)
	}

	// Writing what was read is stable.
	first, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.NoError(t, store.Write(entries))
	second, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	// No temporary files are left behind.
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "web01.json", files[0].Name())
}

func TestStoreRoundTripParameters(t *testing.T) {
	tests := []struct {
		name       string
		parameters models.Parameters
	}{
		{"integers", models.Literal(map[string]interface{}{"levels": []interface{}{80, 90}})},
		{"nested lists", models.Literal(map[string]interface{}{"ports": [][]int{{1, 2}, {3}}, "ratio": 0.25})},
		{"int64 above 2^53", models.Literal(int64(9007199254740993))},
		{"literal with an expression key", models.Literal(map[string]interface{}{"$expr": "x"})},
		{"deferred", models.Deferred("{levels: [vars.warn, vars.crit]}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(t.TempDir(), "web01")
			require.NoError(t, err)

			want := models.AutocheckEntry{
				CheckPluginName: "df",
				Item:            models.SomeItem("/"),
				Parameters:      tt.parameters,
				ServiceLabels:   models.ServiceLabels{},
			}
			require.NoError(t, store.Write([]models.AutocheckEntry{want}))

			got, err := store.Read()
			require.NoError(t, err)
			require.Len(t, got, 1)

			assert.Equal(t, want.Parameters.Kind(), got[0].Parameters.Kind())
			assert.True(t, want.Parameters.Equal(got[0].Parameters), "read back %s", got[0].Parameters)
		})
	}
}

func TestStoreCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "[{'check_plugin_name': 'df'"},
		{"wrong shape", `{"df": 1}`},
		{"bad plugin name", `[{"check_plugin_name": "no such plugin", "item": null, "parameters": null, "service_labels": {}}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "web01.json"), []byte(tc.content), 0o600))

			store, err := NewStore(dir, "web01")
			require.NoError(t, err)

			_, err = store.Read()
			require.ErrorIs(t, err, ErrCorruptAutochecks)
		})
	}
}

func TestStoreEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web01.json"), []byte("\n"), 0o600))

	store, err := NewStore(dir, "web01")
	require.NoError(t, err)

	entries, err := store.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreClear(t *testing.T) {
	store, err := NewStore(t.TempDir(), "web01")
	require.NoError(t, err)

	require.NoError(t, store.Clear(), "clearing an absent file succeeds")

	require.NoError(t, store.Write(sampleEntries()))
	require.NoError(t, store.Clear())

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestNewStoreRejectsBadHostnames(t *testing.T) {
	_, err := NewStore(t.TempDir(), "")
	require.ErrorIs(t, err, ErrEmptyHostname)

	_, err = NewStore(t.TempDir(), "../etc/passwd")
	require.ErrorIs(t, err, ErrInvalidHostname)
}

func TestStoreWithLockExcludesConcurrentHolders(t *testing.T) {
	dir := t.TempDir()

	a, err := NewStore(dir, "web01")
	require.NoError(t, err)
	b, err := NewStore(dir, "web01")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- a.WithLock(context.Background(), func() error {
			close(entered)
			<-release

			return nil
		})
	}()

	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = b.WithLock(ctx, func() error { return nil })
	require.ErrorIs(t, err, ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, b.WithLock(context.Background(), func() error { return nil }))
}
