package httputil_test

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotdata/httputil"
)

func TestReadResponseBody(t *testing.T) {
	t.Parallel()

	t.Run("non empty", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(`{"ok":true}`))}
		b, err := httputil.ReadResponseBody(t.Context(), resp)
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, string(b))
	})

	t.Run("empty required", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(""))}
		_, err := httputil.ReadResponseBody(t.Context(), resp)
		require.Error(t, err)
	})

	t.Run("empty optional", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{Body: io.NopCloser(strings.NewReader(""))}
		b, err := httputil.ReadOptionalResponseBody(t.Context(), resp)
		require.NoError(t, err)
		assert.Empty(t, b)
	})
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()

	const payload = "Position,Track Name,Artist,Streams,URL\n"

	t.Run("identity", func(t *testing.T) {
		t.Parallel()
		b, err := httputil.DecodeBody(t.Context(), "", strings.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})

	t.Run("gzip", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		b, err := httputil.DecodeBody(t.Context(), "gzip", &buf)
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})

	t.Run("br", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		b, err := httputil.DecodeBody(t.Context(), "BR", &buf)
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		_, err := httputil.DecodeBody(t.Context(), "zstd", strings.NewReader(payload))
		require.Error(t, err)
	})
}

func TestNewBackoffBudget(t *testing.T) {
	t.Parallel()

	b := httputil.NewBackoff(300 * time.Millisecond)
	b.Reset()
	start := time.Now()
	for {
		d := b.NextBackOff()
		if d == backoff.Stop {
			break
		}
		time.Sleep(d)
	}
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.LessOrEqual(t, elapsed, 500*time.Millisecond)
}

func TestDecodeBodyDeflate(t *testing.T) {
	t.Parallel()

	const payload = "<html>history</html>"

	t.Run("zlib", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		_, err := w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		b, err := httputil.DecodeBody(t.Context(), "deflate", &buf)
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})

	t.Run("raw", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		_, err = w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		b, err := httputil.DecodeBody(t.Context(), "deflate", &buf)
		require.NoError(t, err)
		assert.Equal(t, payload, string(b))
	})
}
