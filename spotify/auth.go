package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/singleflight"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/httputil"
	"github.com/xeptore/spotdata/log"
	"github.com/xeptore/spotdata/must"
)

// Auth owns the bearer token. The token is never persisted and its expiry is
// not tracked: it is refreshed lazily on first use and again whenever the API
// rejects it.
type Auth struct {
	secrets  config.Secrets
	tokenURL string
	client   *http.Client
	logger   zerolog.Logger

	mux       sync.RWMutex
	token     string
	group     singleflight.Group
	refreshes atomic.Int64
}

type AuthOptions struct {
	TokenURL   string
	HTTPClient *http.Client
}

func NewAuth(secrets config.Secrets, logger zerolog.Logger, opts AuthOptions) *Auth {
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if nil == opts.HTTPClient {
		opts.HTTPClient = &http.Client{Timeout: config.TokenRequestTimeout} //nolint:exhaustruct
	}
	return &Auth{
		secrets:  secrets,
		tokenURL: opts.TokenURL,
		client:   opts.HTTPClient,
		logger:   logger.With().Str("module", "auth").Logger(),
	}
}

// AccessToken returns the current token, fetching one first if none is held.
func (a *Auth) AccessToken(ctx context.Context) (string, error) {
	a.mux.RLock()
	token := a.token
	a.mux.RUnlock()
	if token != "" {
		return token, nil
	}
	if err := a.Refresh(ctx); nil != err {
		return "", err
	}
	a.mux.RLock()
	defer a.mux.RUnlock()
	return a.token, nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single in-flight exchange.
func (a *Auth) Refresh(ctx context.Context) error {
	_, err, _ := a.group.Do("refresh", func() (any, error) {
		token, err := a.exchange(ctx)
		if nil != err {
			return nil, err
		}
		a.mux.Lock()
		a.token = token
		a.mux.Unlock()
		a.refreshes.Add(1)
		a.logger.Debug().Str("access_token", log.RedactString(token)).Msg("Access token refreshed")
		return nil, nil
	})
	return err
}

// Refreshes reports how many successful token exchanges happened.
func (a *Auth) Refreshes() int64 {
	return a.refreshes.Load()
}

func (a *Auth) exchange(ctx context.Context) (token string, err error) {
	flawP := flaw.P{"url": a.tokenURL}

	form := make(url.Values, 4)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", a.secrets.RefreshToken)
	form.Set("client_id", a.secrets.ClientID)
	form.Set("client_secret", a.secrets.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if nil != err {
		if errutil.IsContext(ctx) {
			return "", ctx.Err()
		}
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return "", flaw.From(fmt.Errorf("failed to create refresh token request: %v", err)).Append(flawP)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return "", ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			return "", context.DeadlineExceeded
		default:
			flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
			return "", flaw.From(fmt.Errorf("failed to issue refresh token request: %v", err)).Append(flawP)
		}
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close response body: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if code := resp.StatusCode; !httputil.IsSuccess(code) {
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return "", err
		}
		a.logger.Error().Int("status_code", code).Str("response_body", string(respBytes)).Msg("Token endpoint rejected refresh token")
		return "", &errutil.AuthenticationError{StatusCode: code, Body: string(respBytes)}
	}

	respBytes, err := httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return "", err
	}
	var respBody struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return "", flaw.From(fmt.Errorf("failed to decode token response body: %v", err)).Append(flawP)
	}
	if respBody.AccessToken == "" {
		return "", flaw.From(errors.New("token response has no access_token")).Append(flawP)
	}
	return respBody.AccessToken, nil
}
