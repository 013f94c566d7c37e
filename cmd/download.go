package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/spotify"
)

const (
	flagTopTracks   = "top-tracks"
	flagAlbums      = "albums"
	flagAlbumTracks = "tracks"
)

//nolint:exhaustruct
func newDownloader(e *env) (*spotify.Downloader, error) {
	secrets, err := config.LoadSecrets(e.cfg.EnvFilePath())
	if nil != err {
		return nil, err
	}
	auth := spotify.NewAuth(*secrets, e.logger, spotify.AuthOptions{})
	client := spotify.NewClient(auth, e.logger, spotify.ClientOptions{})
	return spotify.NewDownloader(client, e.root, e.logger, spotify.DownloaderOptions{}), nil
}

// downloadAction wires the shared setup of every Spotify download command
// around fn.
func downloadAction(fn func(ctx context.Context, d *spotify.Downloader, cliCtx *cli.Context, ids []string) ([]spotify.Record, error)) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		ids, err := idsOf(cliCtx)
		if nil != err {
			return err
		}
		e, err := setup(cliCtx)
		if nil != err {
			return err
		}
		defer e.close()

		d, err := newDownloader(e)
		if nil != err {
			return err
		}
		records, err := fn(e.ctx, d, cliCtx, ids)
		if nil != err {
			return err
		}
		e.logger.Info().Int("ids", len(ids)).Int("records", len(records)).Msg("Download finished")
		return nil
	}
}

//nolint:exhaustruct
func tracksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Download track catalog records",
		Flags: idsFlags(),
		Action: downloadAction(func(ctx context.Context, d *spotify.Downloader, _ *cli.Context, ids []string) ([]spotify.Record, error) {
			if len(ids) == 1 {
				return d.Track(ctx, ids[0])
			}
			return d.Tracks(ctx, ids)
		}),
	}
}

//nolint:exhaustruct
func featuresCommand() *cli.Command {
	return &cli.Command{
		Name:  "features",
		Usage: "Download track audio features",
		Flags: idsFlags(),
		Action: downloadAction(func(ctx context.Context, d *spotify.Downloader, _ *cli.Context, ids []string) ([]spotify.Record, error) {
			if len(ids) == 1 {
				return d.TrackFeatures(ctx, ids[0])
			}
			return d.TracksFeatures(ctx, ids)
		}),
	}
}

//nolint:exhaustruct
func analysisCommand() *cli.Command {
	return &cli.Command{
		Name:  "analysis",
		Usage: "Download track audio analyses, one request per track",
		Flags: idsFlags(),
		Action: downloadAction(func(ctx context.Context, d *spotify.Downloader, _ *cli.Context, ids []string) ([]spotify.Record, error) {
			if len(ids) == 1 {
				return d.AudioAnalysis(ctx, ids[0])
			}
			return d.AudioAnalyses(ctx, ids)
		}),
	}
}

//nolint:exhaustruct
func artistsCommand() *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Download artist records, optionally with their top tracks and albums",
		Flags: append(
			idsFlags(),
			&cli.BoolFlag{Name: flagTopTracks, Usage: "Also download each artist's top tracks"},
			&cli.BoolFlag{Name: flagAlbums, Usage: "Also download each artist's albums"},
		),
		Action: downloadAction(func(ctx context.Context, d *spotify.Downloader, cliCtx *cli.Context, ids []string) ([]spotify.Record, error) {
			records, err := d.Several(ctx, spotify.KindSeveralArtists, ids)
			if nil != err {
				return records, err
			}
			for _, sub := range []struct {
				flag string
				kind spotify.Kind
			}{
				{flagTopTracks, spotify.KindArtistTopTracks},
				{flagAlbums, spotify.KindArtistAlbums},
			} {
				if !cliCtx.Bool(sub.flag) {
					continue
				}
				more, err := each(ctx, d, sub.kind, ids)
				records = append(records, more...)
				if nil != err {
					return records, err
				}
			}
			return records, nil
		}),
	}
}

//nolint:exhaustruct
func albumsCommand() *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Download album records, optionally with their track listings",
		Flags: append(
			idsFlags(),
			&cli.BoolFlag{Name: flagAlbumTracks, Usage: "Also download each album's tracks"},
		),
		Action: downloadAction(func(ctx context.Context, d *spotify.Downloader, cliCtx *cli.Context, ids []string) ([]spotify.Record, error) {
			records, err := d.Several(ctx, spotify.KindSeveralAlbums, ids)
			if nil != err || !cliCtx.Bool(flagAlbumTracks) {
				return records, err
			}
			more, err := each(ctx, d, spotify.KindAlbumTracks, ids)
			return append(records, more...), err
		}),
	}
}

// each downloads a single-id endpoint once per id, stopping at the first
// failure.
func each(ctx context.Context, d *spotify.Downloader, kind spotify.Kind, ids []string) ([]spotify.Record, error) {
	var records []spotify.Record
	for _, id := range ids {
		got, err := d.Single(ctx, kind, id)
		if nil != err {
			return records, fmt.Errorf("failed to download %s of %s: %w", kind, id, err)
		}
		records = append(records, got...)
	}
	return records, nil
}
