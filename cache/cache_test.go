package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/spotdata/cache"
)

func TestNotFoundCache(t *testing.T) {
	t.Parallel()

	c := cache.New()
	assert.False(t, c.NotFound.Has("https://api.spotify.com/v1/tracks/x"))

	c.NotFound.Mark("https://api.spotify.com/v1/tracks/x")
	assert.True(t, c.NotFound.Has("https://api.spotify.com/v1/tracks/x"))
	assert.False(t, c.NotFound.Has("https://api.spotify.com/v1/tracks/y"))
	assert.Equal(t, 1, c.NotFound.Len())
}
