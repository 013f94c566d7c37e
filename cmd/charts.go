package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/xeptore/spotdata/charts"
)

const (
	flagWeeks     = "week"
	flagWeeksFile = "weeks-file"
	flagRegion    = "region"
	flagInterval  = "interval"
	flagArtistIDs = "artist"
)

//nolint:exhaustruct
func weeklyCommand() *cli.Command {
	return &cli.Command{
		Name:  "weekly",
		Usage: "Download weekly top chart exports of a region",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: flagWeeks, Usage: "Week as YYYY-MM-DD--YYYY-MM-DD, repeatable"},
			&cli.StringFlag{Name: flagWeeksFile, Usage: "File with whitespace separated weeks"},
			&cli.StringFlag{Name: flagRegion, Value: "global", Usage: "Chart region code"},
		},
		Action: func(cliCtx *cli.Context) error {
			weeks := cliCtx.StringSlice(flagWeeks)
			if path := cliCtx.String(flagWeeksFile); path != "" {
				b, err := os.ReadFile(path)
				if nil != err {
					return fmt.Errorf("failed to read weeks file %q: %v", path, err)
				}
				weeks = append(weeks, strings.Fields(string(b))...)
			}
			if len(weeks) == 0 {
				return fmt.Errorf("at least one week is required through --%s or --%s", flagWeeks, flagWeeksFile)
			}

			e, err := setup(cliCtx)
			if nil != err {
				return err
			}
			defer e.close()

			fetcher := charts.NewFetcher(e.logger, charts.FetcherOptions{})
			weekly := charts.NewWeekly(fetcher, e.root, e.logger, charts.WeeklyOptions{})
			written, err := weekly.Download(e.ctx, weeks, cliCtx.String(flagRegion))
			if nil != err {
				return err
			}
			e.logger.Info().Int("weeks", len(weeks)).Int("files", len(written)).Msg("Weekly charts download finished")
			return nil
		},
	}
}

//nolint:exhaustruct
func kworbCommand() *cli.Command {
	return &cli.Command{
		Name:  "kworb",
		Usage: "Download chart history pages of tracks, artists or a region",
		Flags: append(
			idsFlags(),
			&cli.StringSliceFlag{Name: flagArtistIDs, Usage: "Artist id, repeatable"},
			&cli.StringFlag{Name: flagRegion, Usage: "Region code for the totals page"},
			&cli.StringFlag{Name: flagInterval, Value: "weekly", Usage: "Totals page interval, daily or weekly"},
		),
		Action: func(cliCtx *cli.Context) error {
			var (
				region    = cliCtx.String(flagRegion)
				artistIDs = cliCtx.StringSlice(flagArtistIDs)
				trackIDs  []string
			)
			if cliCtx.IsSet(flagIDs) || cliCtx.IsSet(flagIDsFile) {
				ids, err := idsOf(cliCtx)
				if nil != err {
					return err
				}
				trackIDs = ids
			}
			if len(trackIDs) == 0 && len(artistIDs) == 0 && region == "" {
				return errors.New("nothing to download: pass track ids, artist ids, or a region")
			}

			e, err := setup(cliCtx)
			if nil != err {
				return err
			}
			defer e.close()

			fetcher := charts.NewFetcher(e.logger, charts.FetcherOptions{})
			kworb := charts.NewKworb(fetcher, e.root, e.logger, charts.KworbOptions{})

			var written []string
			if len(trackIDs) > 0 {
				paths, err := kworb.TracksHistory(e.ctx, trackIDs)
				written = append(written, paths...)
				if nil != err {
					return err
				}
			}
			for _, id := range artistIDs {
				path, err := kworb.ArtistHistory(e.ctx, id)
				if nil != err {
					return err
				}
				if path != "" {
					written = append(written, path)
				}
			}
			if region != "" {
				path, err := kworb.RegionHistory(e.ctx, region, cliCtx.String(flagInterval))
				if nil != err {
					return err
				}
				if path != "" {
					written = append(written, path)
				}
			}
			e.logger.Info().Strs("files", written).Msg("Chart history download finished")
			return nil
		},
	}
}
