package spotify

import (
	"net/url"
	"strings"

	"github.com/xeptore/spotdata/fs"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"

	// MaxBatchSize is the largest number of ids the API accepts in one ids= request.
	MaxBatchSize = 50
)

// Kind tags a request and the raw record it produces. The value is persisted
// as the record's data_id and drives flattening later on.
type Kind string

const (
	KindTrack                      Kind = "GET_TRACK"
	KindSeveralTracks              Kind = "GET_SEVERAL_TRACKS"
	KindTrackAudioFeatures         Kind = "GET_TRACK_AUDIO_FEATURES"
	KindSeveralTracksAudioFeatures Kind = "GET_SEVERAL_TRACKS_AUDIO_FEATURES"
	KindTrackAudioAnalysis         Kind = "GET_TRACK_AUDIO_ANALYSIS"
	KindArtist                     Kind = "GET_ARTIST"
	KindSeveralArtists             Kind = "GET_SEVERAL_ARTISTS"
	KindArtistTopTracks            Kind = "GET_TOP_TRACKS"
	KindArtistAlbums               Kind = "GET_ALBUMS"
	KindAlbum                      Kind = "GET_ALBUM"
	KindSeveralAlbums              Kind = "GET_SEVERAL_ALBUMS"
	KindAlbumTracks                Kind = "GET_ALBUM_TRACKS"
)

type endpoint struct {
	path     string
	batch    bool
	category string
	query    url.Values
}

var endpoints = map[Kind]endpoint{
	KindTrack:                      {path: "/tracks/{id}", category: fs.CategoryTrackData},
	KindSeveralTracks:              {path: "/tracks", batch: true, category: fs.CategoryTrackData},
	KindTrackAudioFeatures:         {path: "/audio-features/{id}", category: fs.CategoryAudioFeatures},
	KindSeveralTracksAudioFeatures: {path: "/audio-features", batch: true, category: fs.CategoryAudioFeatures},
	KindTrackAudioAnalysis:         {path: "/audio-analysis/{id}", category: fs.CategoryAudioAnalysis},
	KindArtist:                     {path: "/artists/{id}", category: fs.CategoryArtistData},
	KindSeveralArtists:             {path: "/artists", batch: true, category: fs.CategoryArtistData},
	KindArtistTopTracks:            {path: "/artists/{id}/top-tracks", category: fs.CategoryArtistData, query: url.Values{"market": {"US"}}},
	KindArtistAlbums:               {path: "/artists/{id}/albums", category: fs.CategoryArtistData},
	KindAlbum:                      {path: "/albums/{id}", category: fs.CategoryAlbumData},
	KindSeveralAlbums:              {path: "/albums", batch: true, category: fs.CategoryAlbumData},
	KindAlbumTracks:                {path: "/albums/{id}/tracks", category: fs.CategoryAlbumData},
}

func (k Kind) endpoint() (endpoint, bool) {
	e, ok := endpoints[k]
	return e, ok
}

// IsBatch reports whether k takes a comma-joined ids query instead of an {id}
// path segment.
func (k Kind) IsBatch() bool {
	e, ok := k.endpoint()
	return ok && e.batch
}

// Category is the raw data directory records of k are persisted under.
func (k Kind) Category() string {
	e, _ := k.endpoint()
	return e.category
}

func (k Kind) Valid() bool {
	_, ok := k.endpoint()
	return ok
}

// template is the endpoint as recorded in raw artifacts, with the {id}
// placeholder left intact.
func (e endpoint) template(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + e.path
}

func (e endpoint) singleURL(baseURL, id string) string {
	u := strings.ReplaceAll(e.template(baseURL), "{id}", url.PathEscape(id))
	if len(e.query) > 0 {
		u += "?" + e.query.Encode()
	}
	return u
}

func (e endpoint) batchURL(baseURL string, ids []string) string {
	q := make(url.Values, len(e.query)+1)
	for k, v := range e.query {
		q[k] = v
	}
	q.Set("ids", strings.Join(ids, ","))
	return e.template(baseURL) + "?" + q.Encode()
}
