package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"
	"gopkg.in/matryer/try.v1"

	"github.com/xeptore/spotdata/cache"
	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/httputil"
	"github.com/xeptore/spotdata/log"
	"github.com/xeptore/spotdata/must"
)

// DefaultMaxAttempts bounds how many times a request is re-issued after the
// API rejects the token.
const DefaultMaxAttempts = 5

var errUnauthorized = errors.New("unauthorized")

type Client struct {
	auth        *Auth
	client      *http.Client
	baseURL     string
	retryBudget time.Duration
	maxAttempts int
	cache       *cache.Cache
	logger      zerolog.Logger
}

type ClientOptions struct {
	BaseURL     string
	HTTPClient  *http.Client
	RetryBudget time.Duration
	MaxAttempts int
	Cache       *cache.Cache
}

func NewClient(auth *Auth, logger zerolog.Logger, opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if nil == opts.HTTPClient {
		opts.HTTPClient = &http.Client{Timeout: config.APIRequestTimeout} //nolint:exhaustruct
	}
	if opts.RetryBudget <= 0 {
		opts.RetryBudget = config.RetryBudget
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	opts.MaxAttempts = min(opts.MaxAttempts, try.MaxRetries)
	if nil == opts.Cache {
		opts.Cache = cache.New()
	}
	return &Client{
		auth:        auth,
		client:      opts.HTTPClient,
		baseURL:     opts.BaseURL,
		retryBudget: opts.RetryBudget,
		maxAttempts: opts.MaxAttempts,
		cache:       opts.Cache,
		logger:      logger.With().Str("module", "client").Logger(),
	}
}

// FetchSingle requests one entity by substituting id into the endpoint
// template of kind. The returned record is nil unless the status is
// StatusFetched.
func (c *Client) FetchSingle(ctx context.Context, kind Kind, id string) (*Record, Status, error) {
	e, ok := kind.endpoint()
	switch {
	case !ok:
		return nil, statusUnknown, errutil.Invalid("kind", "unknown endpoint kind %q", kind)
	case e.batch:
		return nil, statusUnknown, errutil.Invalid("kind", "%s is a batch endpoint", kind)
	case id == "":
		return nil, statusUnknown, errutil.Invalid("id", "must be a non-empty string")
	}

	reqURL := e.singleURL(c.baseURL, id)
	if c.cache.NotFound.Has(reqURL) {
		c.logger.Debug().Str("kind", string(kind)).Str("id", id).Msg("Skipping id previously answered with not found")
		return nil, StatusNotFound, nil
	}

	body, status, err := c.fetch(ctx, kind, reqURL)
	if nil != err || status != StatusFetched {
		return nil, status, err
	}
	rec := &Record{
		DataID:   kind,
		Endpoint: e.template(c.baseURL),
		ID:       id,
		RawData:  body,
	}
	return rec, StatusFetched, nil
}

// FetchBatch requests up to MaxBatchSize entities in one call using the ids
// query parameter.
func (c *Client) FetchBatch(ctx context.Context, kind Kind, ids []string) (*Record, Status, error) {
	e, ok := kind.endpoint()
	switch {
	case !ok:
		return nil, statusUnknown, errutil.Invalid("kind", "unknown endpoint kind %q", kind)
	case !e.batch:
		return nil, statusUnknown, errutil.Invalid("kind", "%s is not a batch endpoint", kind)
	}
	if err := validateBatch(ids); nil != err {
		return nil, statusUnknown, err
	}

	body, status, err := c.fetch(ctx, kind, e.batchURL(c.baseURL, ids))
	if nil != err || status != StatusFetched {
		return nil, status, err
	}
	rec := &Record{
		DataID:   kind,
		Endpoint: e.template(c.baseURL),
		IDs:      append([]string(nil), ids...),
		RawData:  body,
	}
	return rec, StatusFetched, nil
}

func validateBatch(ids []string) error {
	switch n := len(ids); {
	case n == 0:
		return errutil.Invalid("ids", "must contain at least one id")
	case n > MaxBatchSize:
		return errutil.Invalid("ids", "must contain at most %d ids, got %d", MaxBatchSize, n)
	}
	if lo.Contains(ids, "") {
		return errutil.Invalid("ids", "must not contain empty ids")
	}
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return errutil.Invalid("ids", "must be unique, found duplicates %v", dups)
	}
	return nil
}

// fetch issues the request, re-authenticating and re-issuing it on 401 until
// maxAttempts is reached. Each attempt retries transient failures within the
// retry budget.
func (c *Client) fetch(ctx context.Context, kind Kind, reqURL string) (json.RawMessage, Status, error) {
	logger := c.logger.With().Str("kind", string(kind)).Str("url", reqURL).Logger()

	var (
		body   []byte
		status Status
	)
	err := try.Do(func(attempt int) (retry bool, err error) {
		token, err := c.auth.AccessToken(ctx)
		if nil != err {
			return false, err
		}

		b, err := c.getWithBackoff(ctx, reqURL, token)
		if nil != err {
			switch {
			case errors.Is(err, errUnauthorized):
				attemptRemained := attempt < c.maxAttempts
				if !attemptRemained {
					return false, errUnauthorized
				}
				logger.Warn().Int("attempt", attempt).Msg("Access token rejected, refreshing")
				if err := c.auth.Refresh(ctx); nil != err {
					return false, err
				}
				return true, errUnauthorized
			case errors.Is(err, errutil.ErrNotFound):
				logger.Error().Msg("Endpoint responded with not found")
				c.cache.NotFound.Mark(reqURL)
				status = StatusNotFound
				return false, nil
			default:
				return false, err
			}
		}
		body = b
		status = StatusFetched
		return false, nil
	})
	if nil != err {
		if errors.Is(err, errUnauthorized) {
			logger.Error().Int("attempts", c.maxAttempts).Msg("Request remained unauthorized after all attempts, skipping")
			return nil, StatusSkipped, nil
		}
		return nil, statusUnknown, err
	}
	switch status {
	case StatusFetched:
	case StatusNotFound:
		return nil, status, nil
	default:
		panic(fmt.Sprintf("request attempts ended with unexpected status %s", status))
	}

	if !json.Valid(body) {
		logger.Error().Err(&errutil.DecodeError{Source: reqURL}).Str("response_body", string(body)).Msg("Dropping response that is not valid JSON")
		return nil, StatusDropped, nil
	}
	return json.RawMessage(body), StatusFetched, nil
}

func (c *Client) getWithBackoff(ctx context.Context, reqURL, token string) ([]byte, error) {
	var body []byte
	op := func() error {
		b, err := c.get(ctx, reqURL, token)
		if nil != err {
			switch {
			case errutil.IsContext(ctx):
				return backoff.Permanent(ctx.Err())
			case errors.Is(err, errUnauthorized), errors.Is(err, errutil.ErrNotFound):
				return backoff.Permanent(err)
			case errutil.IsRetryable(err), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				return backoff.Permanent(err)
			}
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Func(log.Flaw(err)).Str("url", reqURL).Dur("wait", wait).Msg("Request failed, retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(httputil.NewBackoff(c.retryBudget), ctx), notify); nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, reqURL, token string) (respBytes []byte, err error) {
	flawP := flaw.P{"url": reqURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return nil, flaw.From(fmt.Errorf("failed to create request: %v", err)).Append(flawP)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return nil, context.DeadlineExceeded
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return nil, flaw.From(fmt.Errorf("failed to issue request: %v", err)).Append(flawP)
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close response body: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()

	switch code := resp.StatusCode; {
	case httputil.IsSuccess(code):
	case code == http.StatusUnauthorized:
		return nil, errUnauthorized
	case code == http.StatusNotFound:
		return nil, errutil.ErrNotFound
	default:
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return nil, err
		}
		c.logger.Error().Str("url", reqURL).Int("status_code", code).Str("response_body", string(respBytes)).Msg("Unexpected response status code")
		return nil, &errutil.RemoteRequestError{URL: reqURL, StatusCode: code}
	}

	return httputil.ReadOptionalResponseBody(ctx, resp)
}
