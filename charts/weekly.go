package charts

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/log"
	"github.com/xeptore/spotdata/ratelimit"
)

const DefaultWeeklyBaseURL = "https://spotifycharts.com/regional"

var (
	WeeklyRegions = []string{
		"global", "gb", "ar", "au", "bg", "br", "ch", "co", "cy", "de", "do", "ee", "fi",
		"gr", "hk", "hu", "ie", "in", "it", "lt", "lv", "my", "nl", "nz", "pe", "pl", "py",
		"ru", "sg", "sv", "tr", "ua", "vn",
	}
	weekPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}--\d{4}-\d{2}-\d{2}$`)
)

type Weekly struct {
	fetcher *Fetcher
	root    fs.Root
	baseURL string
	pause   time.Duration
	logger  zerolog.Logger
}

type WeeklyOptions struct {
	BaseURL string
	Pause   time.Duration
}

func NewWeekly(fetcher *Fetcher, root fs.Root, logger zerolog.Logger, opts WeeklyOptions) *Weekly {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultWeeklyBaseURL
	}
	if opts.Pause <= 0 {
		opts.Pause = config.BatchPause
	}
	return &Weekly{
		fetcher: fetcher,
		root:    root,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		pause:   opts.Pause,
		logger:  logger.With().Str("module", "weekly").Logger(),
	}
}

func weeklyHeaders(week string) map[string]string {
	return map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
		"accept-encoding": "gzip, deflate, br",
		"accept-language": "en-US;q=0.5",
		"referer":         "https://spotifycharts.com/regional/ar/weekly/" + week,
		"sec-fetch-dest":  "document",
		"sec-fetch-mode":  "navigate",
		"sec-fetch-site":  "same-origin",
		"sec-fetch-user":  "?1",
		"user-agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.61 Safari/537.36",
	}
}

// ValidateWeeks checks every week is a YYYY-MM-DD--YYYY-MM-DD range.
func ValidateWeeks(weeks []string) error {
	if len(weeks) == 0 {
		return errutil.Invalid("weeks", "at least one week is required")
	}
	for _, w := range weeks {
		if !weekPattern.MatchString(w) {
			return errutil.Invalid("weeks", "%q is not formatted as YYYY-MM-DD--YYYY-MM-DD", w)
		}
	}
	return nil
}

func validateRegion(region string, allowed []string) error {
	if region == "" {
		return errutil.Invalid("region", "must be a non-empty string")
	}
	if !slices.Contains(allowed, region) {
		return errutil.Invalid("region", "%q is not allowed", region)
	}
	return nil
}

// Download fetches the weekly top chart export of region for each week and
// writes it to <region>_<week>.csv. Input is validated before any request.
// A week that fails is logged and skipped. It returns the written files.
func (w *Weekly) Download(ctx context.Context, weeks []string, region string) ([]string, error) {
	if err := ValidateWeeks(weeks); nil != err {
		return nil, err
	}
	if err := validateRegion(region, WeeklyRegions); nil != err {
		return nil, err
	}

	logger := w.logger.With().Str("region", region).Logger()
	logger.Info().Int("weeks", len(weeks)).Msg("Initializing weekly charts download")

	dir := w.root.Raw(fs.CategoryWeeklyCharts)
	var written []string
	for i, week := range weeks {
		if i > 0 {
			if err := ratelimit.Sleep(ctx, w.pause); nil != err {
				return written, err
			}
		}
		logger.Info().Str("week", week).Int("index", i+1).Int("total", len(weeks)).Msg("Iterating week")

		url := fmt.Sprintf("%s/%s/weekly/%s/download", w.baseURL, region, week)
		text, err := w.fetcher.FetchText(ctx, url, weeklyHeaders(week))
		if nil != err {
			if errutil.IsContext(ctx) {
				return written, ctx.Err()
			}
			logger.Error().Func(log.Flaw(err)).Str("week", week).Msg("Failed to download week, moving on")
			continue
		}
		if text == "" {
			logger.Error().Str("week", week).Msg("No data was downloaded")
			continue
		}

		file := dir.File(region+"_"+week, ".csv")
		if err := file.WriteText(text); nil != err {
			return written, err
		}
		written = append(written, file.Path)
	}
	logger.Info().Int("files", len(written)).Msg("Weekly charts download completed")
	return written, nil
}
