package flatten

import (
	"github.com/tidwall/gjson"
)

const TableAudioFeatures = "audio_features"

var AudioFeaturesHeader = []string{
	"track_id", "duration_ms", "time_signature", "tempo", "key", "mode", "valence", "liveness",
	"instrumentalness", "acousticness", "speechiness", "loudness", "energy", "danceability",
}

var audioFeaturesPaths = []string{
	"id", "duration_ms", "time_signature", "tempo", "key", "mode", "valence", "liveness",
	"instrumentalness", "acousticness", "speechiness", "loudness", "energy", "danceability",
}

func flattenAudioFeatures(raw gjson.Result, container bool) *Table {
	t := newTable(TableAudioFeatures, AudioFeaturesHeader)
	if !container {
		t.add(project(raw, audioFeaturesPaths...)...)
		return t
	}
	for _, features := range elements(raw.Get("audio_features")) {
		t.add(project(features, audioFeaturesPaths...)...)
	}
	return t
}
