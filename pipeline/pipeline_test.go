package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/flatten"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/pipeline"
)

const (
	singleTrack = `{"data_id":"GET_TRACK","endpoint":"x","id":"t1","raw_data":{
		"id":"t1","name":"One","popularity":10,
		"artists":[{"id":"a1","name":"Lead"}],
		"album":{"id":"al1","name":"Album"}}}`
	batchTracks = `{"data_id":"GET_SEVERAL_TRACKS","endpoint":"x","ids":["t2","t3"],"raw_data":{"tracks":[
		{"id":"t2","name":"Two","artists":[{"id":"a1","name":"Lead"},{"id":"a2","name":"Feat"}],"album":{"id":"al1"}},
		null,
		{"id":"t3","name":"Three","artists":[{"id":"a3","name":"Solo"}],"album":{"id":"al2"}}]}}`
	noArtists = `{"data_id":"GET_TRACK","endpoint":"x","id":"t4","raw_data":{"id":"t4","name":"Nobody","artists":[]}}`
	analysis  = `{"data_id":"GET_TRACK_AUDIO_ANALYSIS","endpoint":"x","id":"t9","raw_data":{
		"meta":{"analyzer_version":"4.0.0"},
		"track":{"duration":200.5,"tempo":120},
		"bars":[{"start":0.1,"duration":1,"confidence":0.5},{"start":1.1,"duration":1,"confidence":0.6}],
		"beats":[{"start":0.1,"duration":0.5,"confidence":0.4}],
		"sections":[],
		"segments":[{"start":0,"duration":0.2,"confidence":1,"pitches":[1.0,0.5],"timbre":[3,4]}],
		"tatums":[]}}`
	weekly = "Note,,,,\n" +
		"Position,Track Name,Artist,Streams,URL\n" +
		"1,Song A,Artist A,1000,https://open.spotify.com/track/id1\n" +
		"2,Song B,Artist B,900,https://open.spotify.com/track/id2\n"
)

func writeRaw(t *testing.T, root fs.Root, category, name, content string) {
	t.Helper()
	dir := root.Raw(category).Path()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

func TestTrackFiles(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	writeRaw(t, root, fs.CategoryTrackData, "t1.json", singleTrack)
	writeRaw(t, root, fs.CategoryTrackData, "1700000000-0.json", batchTracks)
	writeRaw(t, root, fs.CategoryTrackData, "t4.json", noArtists)
	writeRaw(t, root, fs.CategoryTrackData, "broken.json", `{"data_id":`)

	parser := pipeline.NewParser(root, zerolog.Nop())
	report, err := parser.TrackFiles(context.Background(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Written, 2)

	parsed := root.Parsed(fs.CategoryTrackData)
	assert.FileExists(t, parsed.File("t1", ".csv").Path)
	assert.NoFileExists(t, parsed.File("t4", ".csv").Path)

	lines := readLines(t, parsed.File("1700000000-0", ".csv").Path)
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(flatten.TrackHeader, ","), lines[0])
	assert.Contains(t, lines[1], "t2")
	assert.Contains(t, lines[2], "t3")
}

func TestTrackFilesLimitAndQualifier(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	writeRaw(t, root, fs.CategoryTrackData, "t1.json", singleTrack)
	writeRaw(t, root, fs.CategoryTrackData, "1700000000-0.json", batchTracks)

	parser := pipeline.NewParser(root, zerolog.Nop())
	report, err := parser.TrackFiles(context.Background(), pipeline.Options{Qualifier: "t1"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
	assert.NoFileExists(t, root.Parsed(fs.CategoryTrackData).File("1700000000-0", ".csv").Path)

	report, err = parser.TrackFiles(context.Background(), pipeline.Options{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
}

func TestTrackFilesMissingDirectory(t *testing.T) {
	t.Parallel()

	parser := pipeline.NewParser(fs.From(t.TempDir()), zerolog.Nop())
	_, err := parser.TrackFiles(context.Background(), pipeline.Options{})
	require.Error(t, err)
	assert.True(t, errutil.IsFlaw(err))
}

func TestAudioAnalysisFilesAndConsolidation(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	writeRaw(t, root, fs.CategoryAudioAnalysis, "t9.json", analysis)
	writeRaw(t, root, fs.CategoryAudioAnalysis, "t10.json", strings.ReplaceAll(analysis, `"id":"t9"`, `"id":"t10"`))

	parser := pipeline.NewParser(root, zerolog.Nop())
	report, err := parser.AudioAnalysisFiles(context.Background(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Zero(t, report.Failed)
	assert.Len(t, report.Written, 2*len(flatten.AnalysisTables))

	parsed := root.Parsed(fs.CategoryAudioAnalysis)
	bars := readLines(t, parsed.File("bars_t9", ".csv").Path)
	assert.Len(t, bars, 3)

	written, err := parser.ConsolidateAudioAnalysis(context.Background(), pipeline.Options{})
	require.NoError(t, err)
	require.Len(t, written, len(flatten.AnalysisTables))

	consolidated := root.Consolidated(fs.CategoryAudioAnalysis)
	assert.Equal(t, consolidated.File("consolidated_"+flatten.TableBars, ".csv").Path, written[2])
	lines := readLines(t, written[2])
	assert.Len(t, lines, 1+4)
	assert.Equal(t, bars[0], lines[0])
}

func TestConsolidateAudioAnalysisSkipsTablesWithoutFiles(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	parsed := root.Parsed(fs.CategoryAudioAnalysis)
	require.NoError(t, parsed.Ensure())
	require.NoError(t, parsed.File("bars_t1", ".csv").WriteText("track_id,index\nt1,1\n"))

	parser := pipeline.NewParser(root, zerolog.Nop())
	written, err := parser.ConsolidateAudioAnalysis(context.Background(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{root.Consolidated(fs.CategoryAudioAnalysis).File("consolidated_bars", ".csv").Path}, written)
}

func TestConsolidateAudioAnalysisMatchesTablePrefixOnly(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	parsed := root.Parsed(fs.CategoryAudioAnalysis)
	require.NoError(t, parsed.Ensure())
	// Source id contains another table's name.
	require.NoError(t, parsed.File("bars_track_x", ".csv").WriteText("track_id,index\ntrack_x,1\n"))
	require.NoError(t, parsed.File("track_t1", ".csv").WriteText("track_id,tempo\nt1,120\n"))

	parser := pipeline.NewParser(root, zerolog.Nop())
	written, err := parser.ConsolidateAudioAnalysis(context.Background(), pipeline.Options{})
	require.NoError(t, err)

	consolidated := root.Consolidated(fs.CategoryAudioAnalysis)
	trackPath := consolidated.File("consolidated_"+flatten.TableAnalysisTrack, ".csv").Path
	barsPath := consolidated.File("consolidated_"+flatten.TableBars, ".csv").Path
	assert.Equal(t, []string{trackPath, barsPath}, written)
	assert.Equal(t, []string{"track_id,tempo", "t1,120"}, readLines(t, trackPath))
	assert.Equal(t, []string{"track_id,index", "track_x,1"}, readLines(t, barsPath))
}

func TestWeeklyChartFiles(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	writeRaw(t, root, fs.CategoryWeeklyCharts, "global_2020-01-03--2020-01-10.csv", weekly)
	writeRaw(t, root, fs.CategoryWeeklyCharts, "badname.csv", weekly)

	parser := pipeline.NewParser(root, zerolog.Nop())
	report, err := parser.WeeklyChartFiles(context.Background(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 1, report.Failed)

	out := root.Parsed(fs.CategoryWeeklyCharts).File("global_2020-01-03--2020-01-10", ".csv").Path
	assert.Equal(t, []string{out}, report.Written)
	lines := readLines(t, out)
	require.Len(t, lines, 3)
	assert.Equal(t, "global,2020-01-03--2020-01-10,2020-01-03,2020-01-10,id1,Song A,Artist A,1,1000,https://open.spotify.com/track/id1", lines[1])
}

func TestConsolidate(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	writeRaw(t, root, fs.CategoryTrackData, "t1.json", singleTrack)
	writeRaw(t, root, fs.CategoryTrackData, "1700000000-0.json", batchTracks)

	parser := pipeline.NewParser(root, zerolog.Nop())
	_, err := parser.TrackFiles(context.Background(), pipeline.Options{})
	require.NoError(t, err)

	path, err := parser.Consolidate(context.Background(), fs.CategoryTrackData, "all_tracks", pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, root.Consolidated(fs.CategoryTrackData).File("all_tracks", ".csv").Path, path)
	lines := readLines(t, path)
	assert.Len(t, lines, 1+3)
	assert.Equal(t, strings.Join(flatten.TrackHeader, ","), lines[0])

	_, err = parser.Consolidate(context.Background(), fs.CategoryTrackData, "", pipeline.Options{})
	var validationErr *errutil.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestParserStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	root := fs.From(t.TempDir())
	writeRaw(t, root, fs.CategoryTrackData, "t1.json", singleTrack)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parser := pipeline.NewParser(root, zerolog.Nop())
	report, err := parser.TrackFiles(ctx, pipeline.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Written)
}
