package consolidate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotdata/consolidate"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/fs"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o0644))
	return path
}

func TestFilesConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputs := []string{
		writeCSV(t, dir, "a.csv", "id,name\n1,one\n2,two\n"),
		writeCSV(t, dir, "b.csv", "id,name\n3,three\n"),
		writeCSV(t, dir, "c.csv", "id,name\n"),
		writeCSV(t, dir, "d.csv", "id,name\n4,four\n5,five\n6,six\n"),
	}
	output := fs.File{Path: filepath.Join(dir, "out", "all.csv")}

	rows, err := consolidate.Files(inputs, output, ',', zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 7, rows)

	b, err := os.ReadFile(output.Path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,one\n2,two\n3,three\n4,four\n5,five\n6,six\n", string(b))
}

func TestFilesSingleInputIsReproduced(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "track_id,pitches,index\nt1,1.0;0.5,1\nt1,\"a,b\",2\n"
	input := writeCSV(t, dir, "segments_t1.csv", content)
	output := fs.File{Path: filepath.Join(dir, "segments.csv")}

	_, err := consolidate.Files([]string{input}, output, ',', zerolog.Nop())
	require.NoError(t, err)

	b, err := os.ReadFile(output.Path)
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
}

func TestFilesReadsCustomDelimiter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputs := []string{
		writeCSV(t, dir, "a.csv", "id;name\n1;one\n"),
		writeCSV(t, dir, "b.csv", "id;name\n2;two\n"),
	}
	output := fs.File{Path: filepath.Join(dir, "out.csv")}

	_, err := consolidate.Files(inputs, output, ';', zerolog.Nop())
	require.NoError(t, err)

	b, err := os.ReadFile(output.Path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,one\n2,two\n", string(b))
}

func TestFilesRequiresInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := fs.File{Path: filepath.Join(dir, "nested", "out.csv")}

	_, err := consolidate.Files(nil, output, ',', zerolog.Nop())
	var validationErr *errutil.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = os.Stat(filepath.Dir(output.Path))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilesMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := fs.File{Path: filepath.Join(dir, "out.csv")}
	_, err := consolidate.Files([]string{filepath.Join(dir, "missing.csv")}, output, ',', zerolog.Nop())
	require.Error(t, err)
	_, err = os.Stat(output.Path)
	require.NoError(t, err)
}
