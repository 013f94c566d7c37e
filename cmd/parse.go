package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/pipeline"
)

const (
	flagName = "name"

	targetTracks   = "tracks"
	targetFeatures = "features"
	targetAnalysis = "analysis"
	targetWeekly   = "weekly"
)

// targetCategories maps a parse target to the raw category it reads.
var targetCategories = map[string]string{
	targetTracks:   fs.CategoryTrackData,
	targetFeatures: fs.CategoryAudioFeatures,
	targetAnalysis: fs.CategoryAudioAnalysis,
	targetWeekly:   fs.CategoryWeeklyCharts,
}

//nolint:exhaustruct
func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: flagLimit, Usage: "Maximum number of input files, 0 for all"},
		&cli.StringFlag{Name: flagQualifier, Usage: "Only take files whose name contains this text"},
		&cli.StringFlag{Name: flagDelimiter, Value: ",", Usage: "Field delimiter of input CSV files"},
	}
}

func pipelineOptions(cliCtx *cli.Context) (pipeline.Options, error) {
	delimiter, size := utf8.DecodeRuneInString(cliCtx.String(flagDelimiter))
	if delimiter == utf8.RuneError || size != len(cliCtx.String(flagDelimiter)) {
		return pipeline.Options{}, fmt.Errorf("delimiter must be a single character, got %q", cliCtx.String(flagDelimiter))
	}
	return pipeline.Options{
		Limit:     cliCtx.Int(flagLimit),
		Qualifier: cliCtx.String(flagQualifier),
		Delimiter: delimiter,
	}, nil
}

func target(cliCtx *cli.Context) (string, error) {
	t := cliCtx.Args().First()
	if _, ok := targetCategories[t]; !ok {
		return "", fmt.Errorf("target must be one of %s, %s, %s, %s; got %q", targetTracks, targetFeatures, targetAnalysis, targetWeekly, t)
	}
	return t, nil
}

//nolint:exhaustruct
func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Flatten raw artifacts into parsed CSV tables",
		ArgsUsage: "<tracks|features|analysis|weekly>",
		Flags:     pipelineFlags(),
		Action: func(cliCtx *cli.Context) error {
			t, err := target(cliCtx)
			if nil != err {
				return err
			}
			opts, err := pipelineOptions(cliCtx)
			if nil != err {
				return err
			}
			e, err := setup(cliCtx)
			if nil != err {
				return err
			}
			defer e.close()

			parser := pipeline.NewParser(e.root, e.logger)
			run := map[string]func(context.Context, pipeline.Options) (*pipeline.Report, error){
				targetTracks:   parser.TrackFiles,
				targetFeatures: parser.AudioFeaturesFiles,
				targetAnalysis: parser.AudioAnalysisFiles,
				targetWeekly:   parser.WeeklyChartFiles,
			}[t]
			report, err := run(e.ctx, opts)
			if nil != err {
				return err
			}
			e.logger.Info().
				Int("files", report.Files).
				Int("failed", report.Failed).
				Int("written", len(report.Written)).
				Msg("Parsing finished")
			return nil
		},
	}
}

//nolint:exhaustruct
func consolidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "consolidate",
		Usage:     "Merge parsed CSV tables of a target into one file",
		ArgsUsage: "<tracks|features|analysis|weekly>",
		Flags: append(
			pipelineFlags(),
			&cli.StringFlag{Name: flagName, Value: "consolidated", Usage: "Output file name without extension"},
		),
		Action: func(cliCtx *cli.Context) error {
			t, err := target(cliCtx)
			if nil != err {
				return err
			}
			opts, err := pipelineOptions(cliCtx)
			if nil != err {
				return err
			}
			e, err := setup(cliCtx)
			if nil != err {
				return err
			}
			defer e.close()

			parser := pipeline.NewParser(e.root, e.logger)
			if t == targetAnalysis {
				written, err := parser.ConsolidateAudioAnalysis(e.ctx, opts)
				if nil != err {
					return err
				}
				e.logger.Info().Strs("files", written).Msg("Consolidation finished")
				return nil
			}
			path, err := parser.Consolidate(e.ctx, targetCategories[t], cliCtx.String(flagName), opts)
			if nil != err {
				return err
			}
			e.logger.Info().Str("file", path).Msg("Consolidation finished")
			return nil
		},
	}
}
