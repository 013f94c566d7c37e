package charts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/log"
	"github.com/xeptore/spotdata/ratelimit"
)

const DefaultKworbBaseURL = "https://kworb.net/spotify"

var (
	KworbRegions = []string{
		"global", "us", "gb", "ad", "ar", "au", "at", "be", "bo", "br", "bg", "ca", "cl", "co", "cr", "cy", "cz",
		"dk", "do", "ec", "sv", "ee", "fi", "fr", "de", "gr", "gt", "hn", "hk", "hu", "is", "id", "in", "ie", "il",
		"it", "jp", "lv", "lt", "lu", "my", "mt", "mx", "nl", "nz", "ni", "no", "pa", "py", "pe", "ph", "pl", "pt",
		"ro", "sg", "sk", "es", "se", "ch", "tw", "th", "tr", "uy", "vn",
	}
	KworbIntervals = []string{"daily", "weekly"}
)

var kworbHeaders = map[string]string{
	"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
	"accept-encoding":           "gzip, deflate, br",
	"accept-language":           "en-US,en;q=0.9,es-419;q=0.8,es;q=0.7,es-ES;q=0.6,en-GB;q=0.5,pt;q=0.4,pt-BR;q=0.3",
	"referer":                   "https://kworb.net/spotify/country/global_weekly_totals.html",
	"sec-fetch-dest":            "document",
	"sec-fetch-mode":            "navigate",
	"sec-fetch-site":            "same-origin",
	"sec-fetch-user":            "?1",
	"upgrade-insecure-requests": "1",
	"user-agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.96 Safari/537.36",
}

// Kworb downloads chart history pages of tracks, artists and regions.
type Kworb struct {
	fetcher *Fetcher
	root    fs.Root
	baseURL string
	pause   time.Duration
	logger  zerolog.Logger
}

type KworbOptions struct {
	BaseURL string
	Pause   time.Duration
}

func NewKworb(fetcher *Fetcher, root fs.Root, logger zerolog.Logger, opts KworbOptions) *Kworb {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultKworbBaseURL
	}
	if opts.Pause <= 0 {
		opts.Pause = config.BatchPause
	}
	return &Kworb{
		fetcher: fetcher,
		root:    root,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		pause:   opts.Pause,
		logger:  logger.With().Str("module", "kworb").Logger(),
	}
}

// TrackHistory writes the chart history page of a track. The returned path is
// empty when nothing was downloaded.
func (k *Kworb) TrackHistory(ctx context.Context, trackID string) (string, error) {
	if trackID == "" {
		return "", errutil.Invalid("track_id", "must be a non-empty string")
	}
	return k.download(ctx, fmt.Sprintf("%s/track/%s.html", k.baseURL, trackID), fs.CategoryKworbTrack, trackID)
}

// TracksHistory runs TrackHistory for every id with a pause in between. A
// failing id is logged and skipped.
func (k *Kworb) TracksHistory(ctx context.Context, trackIDs []string) ([]string, error) {
	if len(trackIDs) == 0 {
		return nil, errutil.Invalid("track_ids", "at least one track id is required")
	}
	var written []string
	for i, id := range trackIDs {
		if i > 0 {
			if err := ratelimit.Sleep(ctx, k.pause); nil != err {
				return written, err
			}
		}
		path, err := k.TrackHistory(ctx, id)
		if nil != err {
			if errutil.IsContext(ctx) {
				return written, ctx.Err()
			}
			k.logger.Error().Func(log.Flaw(err)).Str("track_id", id).Msg("Aborting download for track")
			continue
		}
		if path != "" {
			written = append(written, path)
		}
	}
	return written, nil
}

func (k *Kworb) ArtistHistory(ctx context.Context, artistID string) (string, error) {
	if artistID == "" {
		return "", errutil.Invalid("artist_id", "must be a non-empty string")
	}
	return k.download(ctx, fmt.Sprintf("%s/artist/%s.html", k.baseURL, artistID), fs.CategoryKworbArtist, artistID)
}

// RegionHistory writes the totals page of region for interval to
// <region>-<interval>.html.
func (k *Kworb) RegionHistory(ctx context.Context, region, interval string) (string, error) {
	if err := validateRegion(region, KworbRegions); nil != err {
		return "", err
	}
	if err := validateRegion(interval, KworbIntervals); nil != err {
		return "", errutil.Invalid("interval", "%q is not one of %v", interval, KworbIntervals)
	}
	url := fmt.Sprintf("%s/country/%s_%s_totals.html", k.baseURL, region, interval)
	return k.download(ctx, url, fs.CategoryKworbRegion, region+"-"+interval)
}

func (k *Kworb) download(ctx context.Context, url, category, name string) (string, error) {
	logger := k.logger.With().Str("url", url).Logger()
	logger.Info().Msg("Initializing charts history retrieval")

	text, err := k.fetcher.FetchText(ctx, url, kworbHeaders)
	if nil != err {
		return "", err
	}
	if text == "" {
		logger.Error().Msg("No data was downloaded")
		return "", nil
	}

	file := k.root.Raw(category).File(name, ".html")
	if err := file.WriteText(text); nil != err {
		return "", err
	}
	logger.Info().Str("file", file.Path).Msg("Charts history saved")
	return file.Path, nil
}
