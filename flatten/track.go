package flatten

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const TableTrack = "track"

var TrackHeader = []string{
	"track_id", "track_name", "type", "popularity", "duration_ms", "is_explicit", "is_local",
	"artist_id", "artist_name", "artist_type", "feat_artists_id", "feat_artists_name",
	"album_id", "album_name", "album_type", "album_release_date", "album_total_tracks",
}

func flattenTracks(raw gjson.Result, container bool) (*Table, error) {
	t := newTable(TableTrack, TrackHeader)
	if !container {
		return t, addTrack(t, raw)
	}
	for _, track := range elements(raw.Get("tracks")) {
		if err := addTrack(t, track); nil != err {
			return nil, err
		}
	}
	return t, nil
}

func addTrack(t *Table, track gjson.Result) error {
	artists := track.Get("artists").Array()
	if len(artists) == 0 {
		return fmt.Errorf("%w: track %q", ErrNoArtists, track.Get("id").String())
	}
	lead := artists[0]

	featIDs, featNames := Null(), Null()
	if feat := artists[1:]; len(feat) > 0 {
		featIDs = Text(strings.Join(lo.Map(feat, func(a gjson.Result, _ int) string { return a.Get("id").String() }), "-"))
		featNames = Text(strings.Join(lo.Map(feat, func(a gjson.Result, _ int) string { return a.Get("name").String() }), "-"))
	}

	row := project(track, "id", "name", "type", "popularity", "duration_ms", "explicit", "is_local")
	row = append(row, project(lead, "id", "name", "type")...)
	row = append(row, featIDs, featNames)
	row = append(row, project(track, "album.id", "album.name", "album.album_type", "album.release_date", "album.total_tracks")...)
	t.add(row...)
	return nil
}
