package flatten

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/spotify"
)

var (
	// ErrNoArtists aborts flattening of a document containing a track with no
	// artists listed.
	ErrNoArtists = errors.New("track has no artists")
	// ErrUnsupportedKind is returned for a data_id no shape handles.
	ErrUnsupportedKind = errors.New("unsupported data kind")
)

// Shape is one of the fixed document structures that can be flattened. The
// set is closed: TrackShape, AudioFeaturesShape, AudioAnalysisShape and
// ChartShape.
type Shape interface {
	// Tables lists the names of the tables the shape produces.
	Tables() []string
	// FileName is the parsed file name of table for a source artifact name.
	FileName(table, source string) string
	isShape()
}

// TrackShape flattens track documents. Container documents hold a "tracks"
// array and fan out to one row per element.
type TrackShape struct {
	Container bool
}

// AudioFeaturesShape flattens audio features documents. Container documents
// hold an "audio_features" array.
type AudioFeaturesShape struct {
	Container bool
}

// AudioAnalysisShape flattens one audio analysis into seven tables sharing
// the track id.
type AudioAnalysisShape struct{}

// ChartShape flattens a weekly chart CSV export. It is selected by the file
// category rather than a data_id.
type ChartShape struct{}

func (TrackShape) isShape()         {}
func (AudioFeaturesShape) isShape() {}
func (AudioAnalysisShape) isShape() {}
func (ChartShape) isShape()         {}

func (TrackShape) Tables() []string         { return []string{TableTrack} }
func (AudioFeaturesShape) Tables() []string { return []string{TableAudioFeatures} }
func (AudioAnalysisShape) Tables() []string { return AnalysisTables }
func (ChartShape) Tables() []string         { return []string{TableChart} }

func (TrackShape) FileName(_, source string) string         { return source }
func (AudioFeaturesShape) FileName(_, source string) string { return source }
func (AudioAnalysisShape) FileName(table, source string) string {
	return table + "_" + source
}
func (ChartShape) FileName(_, source string) string { return source }

// ShapeOf resolves the shape tagged by kind. Shapes are never inferred from
// document contents.
func ShapeOf(kind spotify.Kind) (Shape, error) {
	switch kind {
	case spotify.KindTrack:
		return TrackShape{}, nil
	case spotify.KindSeveralTracks, spotify.KindArtistTopTracks:
		return TrackShape{Container: true}, nil
	case spotify.KindTrackAudioFeatures:
		return AudioFeaturesShape{}, nil
	case spotify.KindSeveralTracksAudioFeatures:
		return AudioFeaturesShape{Container: true}, nil
	case spotify.KindTrackAudioAnalysis:
		return AudioAnalysisShape{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

// Document flattens one raw artifact as persisted by the downloader: an
// envelope with data_id, id or ids, and raw_data. source is the artifact name
// without extension. The shape tagged by data_id is returned with its tables.
func Document(source string, doc []byte) (Shape, []*Table, error) {
	if !gjson.ValidBytes(doc) {
		return nil, nil, &errutil.DecodeError{Source: source}
	}
	env := gjson.ParseBytes(doc)
	shape, err := ShapeOf(spotify.Kind(env.Get("data_id").String()))
	if nil != err {
		return nil, nil, err
	}
	raw := env.Get("raw_data")

	switch s := shape.(type) {
	case TrackShape:
		t, err := flattenTracks(raw, s.Container)
		if nil != err {
			return nil, nil, err
		}
		return s, []*Table{t}, nil
	case AudioFeaturesShape:
		return s, []*Table{flattenAudioFeatures(raw, s.Container)}, nil
	case AudioAnalysisShape:
		trackID := env.Get("id").String()
		if trackID == "" {
			trackID = source
		}
		return s, flattenAudioAnalysis(trackID, raw), nil
	case ChartShape:
		return nil, nil, fmt.Errorf("%w: chart exports are not JSON documents", ErrUnsupportedKind)
	default:
		panic(fmt.Sprintf("unexpected shape %T", s))
	}
}

// elements returns the non-null elements of a container array.
func elements(container gjson.Result) []gjson.Result {
	var out []gjson.Result
	container.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.Null {
			out = append(out, v)
		}
		return true
	})
	return out
}
