package flatten

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeptore/spotdata/errutil"
)

const (
	TableChart = "chart"

	chartPreambleRows = 2
	chartColumns      = 5
)

var ChartHeader = []string{
	"region", "week", "date_from", "date_to", "track_id", "track_name", "artist",
	"track_position", "track_streams", "track_url",
}

// ChartSource splits a chart export name of the form <region>_<from>--<to>.
func ChartSource(source string) (region, week, from, to string, err error) {
	region, week, ok := strings.Cut(source, "_")
	if !ok || region == "" {
		return "", "", "", "", errutil.Invalid("source", "%q is not named <region>_<week>", source)
	}
	from, to, ok = strings.Cut(week, "--")
	if !ok || from == "" || to == "" {
		return "", "", "", "", errutil.Invalid("source", "week %q of %q is not formatted as <from>--<to>", week, source)
	}
	return region, week, from, to, nil
}

// Flatten reads a chart export whose first two lines are a preamble and a
// header. Each data row's track id is the last path segment of its URL.
func (ChartShape) Flatten(source string, r io.Reader, delimiter rune) (*Table, error) {
	region, week, from, to, err := ChartSource(source)
	if nil != err {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	t := newTable(TableChart, ChartHeader)
	for line := 0; ; line++ {
		rec, err := reader.Read()
		if nil != err {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read chart %s: %v", source, err)
		}
		if line < chartPreambleRows {
			continue
		}
		if len(rec) < chartColumns {
			return nil, fmt.Errorf("chart %s line %d: expected %d columns, got %d", source, line+1, chartColumns, len(rec))
		}
		position, name, artist, streams, url := rec[0], rec[1], rec[2], rec[3], rec[4]
		trackID := url[strings.LastIndex(url, "/")+1:]
		t.add(
			Text(region), Text(week), Text(from), Text(to),
			Text(trackID), Text(name), Text(artist), Text(position), Text(streams), Text(url),
		)
	}
	return t, nil
}
