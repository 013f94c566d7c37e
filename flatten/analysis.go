package flatten

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const (
	TableMeta          = "meta"
	TableAnalysisTrack = "track"
	TableBars          = "bars"
	TableBeats         = "beats"
	TableSections      = "sections"
	TableSegments      = "segments"
	TableTatums        = "tatums"
)

var AnalysisTables = []string{TableMeta, TableAnalysisTrack, TableBars, TableBeats, TableSections, TableSegments, TableTatums}

var (
	metaFields = []string{
		"analyzer_version", "platform", "detailed_status", "status_code", "timestamp", "analysis_time", "input_process",
	}
	trackFields = []string{
		"num_samples", "duration", "sample_md5", "offset_seconds", "window_seconds", "analysis_sample_rate",
		"analysis_channels", "end_of_fade_in", "start_of_fade_out", "loudness", "tempo", "tempo_confidence",
		"time_signature", "time_signature_confidence", "key", "key_confidence", "mode", "mode_confidence",
		"codestring", "code_version", "echoprintstring", "echoprint_version", "synchstring", "synch_version",
		"rhythmstring", "rhythm_version",
	}
	intervalFields = []string{"start", "duration", "confidence"}
	sectionFields  = []string{
		"start", "duration", "confidence", "loudness", "tempo", "tempo_confidence", "key", "key_confidence",
		"mode", "mode_confidence", "time_signature", "time_signature_confidence",
	}
	segmentFields = []string{
		"start", "duration", "confidence", "loudness_start", "loudness_max_time", "loudness_max", "loudness_end",
	}
)

func withTrackID(fields []string) []string {
	return append([]string{"track_id"}, fields...)
}

func withIndex(fields []string) []string {
	return append(withTrackID(fields), "index")
}

var AnalysisHeaders = map[string][]string{
	TableMeta:          withTrackID(metaFields),
	TableAnalysisTrack: withTrackID(trackFields),
	TableBars:          withIndex(intervalFields),
	TableBeats:         withIndex(intervalFields),
	TableSections:      withIndex(sectionFields),
	TableSegments:      append(withTrackID(segmentFields), "pitches", "timbre", "index"),
	TableTatums:        withIndex(intervalFields),
}

// flattenAudioAnalysis returns the seven analysis tables in AnalysisTables
// order. Sub-entity rows carry a 1-based index scoped to trackID.
func flattenAudioAnalysis(trackID string, raw gjson.Result) []*Table {
	id := Text(trackID)
	tables := make([]*Table, len(AnalysisTables))
	for i, name := range AnalysisTables {
		tables[i] = newTable(name, AnalysisHeaders[name])
	}
	meta, track, bars, beats, sections, segments, tatums := tables[0], tables[1], tables[2], tables[3], tables[4], tables[5], tables[6]

	meta.add(append([]Value{id}, project(raw.Get("meta"), metaFields...)...)...)
	track.add(append([]Value{id}, project(raw.Get("track"), trackFields...)...)...)

	addIndexed(bars, id, raw.Get("bars"), func(e gjson.Result) []Value { return project(e, intervalFields...) })
	addIndexed(beats, id, raw.Get("beats"), func(e gjson.Result) []Value { return project(e, intervalFields...) })
	addIndexed(sections, id, raw.Get("sections"), func(e gjson.Result) []Value { return project(e, sectionFields...) })
	addIndexed(segments, id, raw.Get("segments"), func(e gjson.Result) []Value {
		return append(project(e, segmentFields...), vector(e.Get("pitches")), vector(e.Get("timbre")))
	})
	addIndexed(tatums, id, raw.Get("tatums"), func(e gjson.Result) []Value { return project(e, intervalFields...) })

	return tables
}

func addIndexed(t *Table, id Value, list gjson.Result, fields func(gjson.Result) []Value) {
	for i, e := range list.Array() {
		row := append([]Value{id}, fields(e)...)
		t.add(append(row, Text(strconv.Itoa(i+1)))...)
	}
}

// vector joins the elements of a numeric array with ';' keeping each element
// in its source textual form.
func vector(arr gjson.Result) Value {
	if !arr.IsArray() {
		return Null()
	}
	return Text(strings.Join(lo.Map(arr.Array(), func(r gjson.Result, _ int) string { return r.Raw }), ";"))
}
