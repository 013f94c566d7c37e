package spotify

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/iterutil"
	"github.com/xeptore/spotdata/log"
	"github.com/xeptore/spotdata/mathutil"
	"github.com/xeptore/spotdata/ratelimit"
	"github.com/xeptore/spotdata/waitqueue"
)

// Downloader fetches records through a Client and persists each one as a raw
// JSON artifact. Every call returns the records it fetched; nothing is kept
// between calls.
type Downloader struct {
	client     *Client
	root       fs.Root
	batchPause time.Duration
	itemPause  time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

type DownloaderOptions struct {
	BatchPause time.Duration
	ItemPause  time.Duration
}

func NewDownloader(client *Client, root fs.Root, logger zerolog.Logger, opts DownloaderOptions) *Downloader {
	if opts.BatchPause <= 0 {
		opts.BatchPause = config.BatchPause
	}
	if opts.ItemPause <= 0 {
		opts.ItemPause = config.ItemPause
	}
	return &Downloader{
		client:     client,
		root:       root,
		batchPause: opts.BatchPause,
		itemPause:  opts.ItemPause,
		now:        time.Now,
		logger:     logger.With().Str("module", "downloader").Logger(),
	}
}

func (d *Downloader) Track(ctx context.Context, id string) ([]Record, error) {
	return d.Single(ctx, KindTrack, id)
}

func (d *Downloader) Tracks(ctx context.Context, ids []string) ([]Record, error) {
	return d.Several(ctx, KindSeveralTracks, ids)
}

func (d *Downloader) TrackFeatures(ctx context.Context, id string) ([]Record, error) {
	return d.Single(ctx, KindTrackAudioFeatures, id)
}

func (d *Downloader) TracksFeatures(ctx context.Context, ids []string) ([]Record, error) {
	return d.Several(ctx, KindSeveralTracksAudioFeatures, ids)
}

func (d *Downloader) AudioAnalysis(ctx context.Context, id string) ([]Record, error) {
	return d.Single(ctx, KindTrackAudioAnalysis, id)
}

// AudioAnalyses downloads the analysis of every id one by one with a pause in
// between. A failure for one id is logged and the loop moves on, except for
// authentication failures and context cancellation which end it.
func (d *Downloader) AudioAnalyses(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, errutil.Invalid("ids", "must contain at least one id")
	}

	var out []Record
	for i, id := range ids {
		if i > 0 {
			if err := ratelimit.Sleep(ctx, d.itemPause); nil != err {
				return out, err
			}
		}
		recs, err := d.Single(ctx, KindTrackAudioAnalysis, id)
		if nil != err {
			var authErr *errutil.AuthenticationError
			switch {
			case errutil.IsContext(ctx):
				return out, ctx.Err()
			case errors.As(err, &authErr):
				return out, err
			default:
				d.logger.Error().Func(log.Flaw(err)).Str("id", id).Msg("Failed to download audio analysis, moving on")
				continue
			}
		}
		out = append(out, recs...)
	}
	return out, nil
}

// Single fetches one entity and writes it to <category>/<id>.json.
func (d *Downloader) Single(ctx context.Context, kind Kind, id string) ([]Record, error) {
	logger := d.logger.With().Str("kind", string(kind)).Str("id", id).Logger()

	rec, status, err := d.client.FetchSingle(ctx, kind, id)
	if nil != err {
		return nil, err
	}
	if status != StatusFetched {
		logger.Error().Stringer("status", status).Msg("No data was downloaded")
		return nil, nil
	}

	if err := d.root.Raw(kind.Category()).File(id, ".json").WriteJSON(rec); nil != err {
		return nil, err
	}
	logger.Info().Msg("Download completed")
	return []Record{*rec}, nil
}

// Several de-duplicates ids, fetches them in chunks of MaxBatchSize with a
// pause between chunks, and writes every fetched record to
// <category>/<unix-seconds>-<index>.json.
func (d *Downloader) Several(ctx context.Context, kind Kind, ids []string) ([]Record, error) {
	if !kind.IsBatch() {
		return nil, errutil.Invalid("kind", "%s is not a batch endpoint", kind)
	}
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, errutil.Invalid("ids", "must contain at least one id")
	}
	logger := d.logger.With().Str("kind", string(kind)).Logger()

	var (
		queue   = waitqueue.New(d.batchPause)
		records []Record
		chunks  = mathutil.CeilDiv(len(ids), MaxBatchSize)
	)
	for i, chunk := range iterutil.Chunks(ids, MaxBatchSize) {
		logger.Info().Int("chunk", i+1).Int("chunks", chunks).Msg("Iterating chunk")
		err := queue.Send(ctx, func() error {
			rec, status, err := d.client.FetchBatch(ctx, kind, chunk)
			if nil != err {
				return err
			}
			if status != StatusFetched {
				logger.Error().Int("chunk", i+1).Stringer("status", status).Msg("Chunk yielded no data")
				return nil
			}
			records = append(records, *rec)
			return nil
		})
		if nil != err {
			return nil, err
		}
	}

	if len(records) == 0 {
		logger.Error().Msg("No data was downloaded")
		return nil, nil
	}

	signature := strconv.FormatInt(d.now().Unix(), 10)
	dir := d.root.Raw(kind.Category())
	index := iterutil.Int(-1)
	for _, rec := range records {
		name := signature + "-" + strconv.Itoa(index.Next())
		if err := dir.File(name, ".json").WriteJSON(rec); nil != err {
			return nil, err
		}
	}
	logger.Info().Int("records", len(records)).Msg("Download completed")
	return records, nil
}
