package httputil

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/must"
)

func readResponseBody(ctx context.Context, body io.Reader) ([]byte, error) {
	respBody, err := io.ReadAll(body)
	if nil != err {
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
		}
	}
	if len(respBody) == 0 {
		return nil, io.EOF
	}
	return respBody, nil
}

func ReadResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp.Body)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, flaw.From(errors.New("unexpected empty response body"))
		}
		return nil, err
	}
	return respBody, nil
}

func ReadOptionalResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp.Body)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return respBody, nil
}

// DecodeBody undoes the Content-Encoding of a body that was requested with an
// explicit Accept-Encoding header, where net/http leaves it compressed.
func DecodeBody(ctx context.Context, contentEncoding string, body io.Reader) (out []byte, err error) {
	var r io.Reader
	switch enc := strings.ToLower(strings.TrimSpace(contentEncoding)); enc {
	case "", "identity":
		r = body
	case "gzip":
		gr, gzErr := gzip.NewReader(body)
		if nil != gzErr {
			flawP := flaw.P{"err_debug_tree": errutil.Tree(gzErr).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to create gzip reader: %v", gzErr)).Append(flawP)
		}
		defer func() {
			if closeErr := gr.Close(); nil != closeErr {
				flawP := flaw.P{"err_debug_tree": errutil.Tree(closeErr).FlawP()}
				closeErr = flaw.From(fmt.Errorf("failed to close gzip reader: %v", closeErr)).Append(flawP)
				err = must.JoinClose(err, closeErr)
			}
		}()
		r = gr
	case "deflate":
		raw, readErr := readResponseBody(ctx, body)
		if nil != readErr {
			if errors.Is(readErr, io.EOF) {
				return nil, nil
			}
			return nil, readErr
		}
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); nil == err {
			defer zr.Close()
			r = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer fr.Close()
			r = fr
		}
	case "br":
		r = brotli.NewReader(body)
	default:
		return nil, flaw.From(fmt.Errorf("unsupported content encoding %q", enc))
	}

	b, err := readResponseBody(ctx, r)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
