package charts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/httputil"
	"github.com/xeptore/spotdata/log"
)

// Fetcher issues anonymous GET requests for chart pages and exports.
type Fetcher struct {
	client      *resty.Client
	retryBudget time.Duration
	logger      zerolog.Logger
}

type FetcherOptions struct {
	Timeout     time.Duration
	RetryBudget time.Duration
}

func NewFetcher(logger zerolog.Logger, opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = config.ChartRequestTimeout
	}
	if opts.RetryBudget <= 0 {
		opts.RetryBudget = config.RetryBudget
	}
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0)
	return &Fetcher{
		client:      client,
		retryBudget: opts.RetryBudget,
		logger:      logger.With().Str("module", "fetcher").Logger(),
	}
}

// FetchText returns the decoded body of url. Network failures are retried
// within the retry budget. A non-2xx response is logged and yields an empty
// string with no error so enumeration loops can carry on.
func (f *Fetcher) FetchText(ctx context.Context, url string, headers map[string]string) (string, error) {
	var out string
	op := func() error {
		text, err := f.fetch(ctx, url, headers)
		if nil != err {
			if errutil.IsContext(ctx) {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		out = text
		return nil
	}
	notify := func(err error, wait time.Duration) {
		f.logger.Warn().Func(log.Flaw(err)).Str("url", url).Dur("wait", wait).Msg("Request failed, retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(httputil.NewBackoff(f.retryBudget), ctx), notify); nil != err {
		if errutil.IsContext(ctx) {
			return "", ctx.Err()
		}
		return "", err
	}
	return out, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	flawP := flaw.P{"url": url}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetDoNotParseResponse(true).
		Get(url)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return "", ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return "", flaw.From(fmt.Errorf("request timed out: %v", err)).Append(flawP)
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return "", flaw.From(fmt.Errorf("failed to issue request: %v", err)).Append(flawP)
		}
	}
	body := resp.RawBody()
	defer func() {
		if closeErr := body.Close(); nil != closeErr {
			f.logger.Warn().Err(closeErr).Str("url", url).Msg("Failed to close response body")
		}
	}()

	if code := resp.StatusCode(); !httputil.IsSuccess(code) {
		f.logger.Error().Str("url", url).Int("status_code", code).Msg("Endpoint responded with unsuccessful status code")
		return "", nil
	}

	b, err := httputil.DecodeBody(ctx, resp.Header().Get("Content-Encoding"), body)
	if nil != err {
		if errutil.IsContext(ctx) {
			return "", ctx.Err()
		}
		if errutil.IsFlaw(err) {
			return "", err
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return "", flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
	}
	return string(b), nil
}
