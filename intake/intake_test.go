package intake_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotdata/intake"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o0644))
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.json":              `{"data_id":"GET_TRACK"}`,
		"b.json":              `{not json`,
		"bars_track1.csv":     "track_id\n",
		"segments_track1.csv": "track_id\n",
		"notes.md":            "skip me",
		"page.html":           "<html></html>",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o0755))

	t.Run("all_allowed", func(t *testing.T) {
		t.Parallel()
		items, err := intake.Scan(dir, intake.Options{}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.json"),
			filepath.Join(dir, "bars_track1.csv"),
			filepath.Join(dir, "page.html"),
			filepath.Join(dir, "segments_track1.csv"),
		}, intake.Paths(items))
		assert.JSONEq(t, `{"data_id":"GET_TRACK"}`, string(items[0].Doc))
		assert.Nil(t, items[1].Doc)
		assert.Equal(t, "bars_track1", items[1].Name())
	})

	t.Run("extension_and_qualifier", func(t *testing.T) {
		t.Parallel()
		items, err := intake.Scan(dir, intake.Options{Extensions: []string{intake.ExtCSV}, Qualifier: "segments_"}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "segments_track1.csv")}, intake.Paths(items))
	})

	t.Run("prefix_ignores_inner_matches", func(t *testing.T) {
		t.Parallel()
		sub := t.TempDir()
		writeFiles(t, sub, map[string]string{
			"bars_track_1.csv":  "track_id\n",
			"track_1.csv":       "track_id\n",
			"segments_bars.csv": "track_id\n",
		})
		items, err := intake.Scan(sub, intake.Options{Extensions: []string{intake.ExtCSV}, Prefix: "bars_"}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(sub, "bars_track_1.csv")}, intake.Paths(items))

		items, err = intake.Scan(sub, intake.Options{Extensions: []string{intake.ExtCSV}, Prefix: "track_"}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(sub, "track_1.csv")}, intake.Paths(items))
	})

	t.Run("wildcard_qualifier", func(t *testing.T) {
		t.Parallel()
		items, err := intake.Scan(dir, intake.Options{Extensions: []string{intake.ExtCSV}, Qualifier: intake.Wildcard}, zerolog.Nop())
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("max_count", func(t *testing.T) {
		t.Parallel()
		items, err := intake.Scan(dir, intake.Options{MaxCount: 1}, zerolog.Nop())
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("list_only_keeps_malformed_json", func(t *testing.T) {
		t.Parallel()
		items, err := intake.Scan(dir, intake.Options{Extensions: []string{intake.ExtJSON}, ListOnly: true}, zerolog.Nop())
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Nil(t, items[0].Doc)
	})

	t.Run("missing_dir", func(t *testing.T) {
		t.Parallel()
		_, err := intake.Scan(filepath.Join(dir, "nope"), intake.Options{}, zerolog.Nop())
		require.Error(t, err)
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"x.csv": "a\n", "y.csv": "b\n", "keep.txt": "c"})

	items, err := intake.Scan(dir, intake.Options{Extensions: []string{intake.ExtCSV}}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, intake.Remove(items, zerolog.Nop()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())
}
