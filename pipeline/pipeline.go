package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/consolidate"
	"github.com/xeptore/spotdata/errutil"
	"github.com/xeptore/spotdata/flatten"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/intake"
	"github.com/xeptore/spotdata/log"
	"github.com/xeptore/spotdata/must"
)

// Parser turns raw artifacts under data/raw into parsed tables under
// data/parsed and merges parsed tables into data/consolidated.
type Parser struct {
	root   fs.Root
	logger zerolog.Logger
}

type Options struct {
	// Limit caps how many files are taken from the input directory. Zero means
	// no limit.
	Limit     int
	Qualifier string
	Delimiter rune
}

// Report summarizes one parse run.
type Report struct {
	Files   int
	Failed  int
	Written []string
}

func NewParser(root fs.Root, logger zerolog.Logger) *Parser {
	return &Parser{
		root:   root,
		logger: logger.With().Str("module", "parser").Logger(),
	}
}

func (p *Parser) TrackFiles(ctx context.Context, opts Options) (*Report, error) {
	return p.documents(ctx, fs.CategoryTrackData, opts)
}

func (p *Parser) AudioFeaturesFiles(ctx context.Context, opts Options) (*Report, error) {
	return p.documents(ctx, fs.CategoryAudioFeatures, opts)
}

func (p *Parser) AudioAnalysisFiles(ctx context.Context, opts Options) (*Report, error) {
	return p.documents(ctx, fs.CategoryAudioAnalysis, opts)
}

// documents flattens every raw JSON artifact of category. A file that fails to
// flatten is logged and skipped; failing to write output ends the run.
func (p *Parser) documents(ctx context.Context, category string, opts Options) (*Report, error) {
	logger := p.logger.With().Str("category", category).Logger()
	logger.Info().Msg("Initializing files parsing")

	items, err := intake.Scan(
		p.root.Raw(category).Path(),
		intake.Options{Extensions: []string{intake.ExtJSON}, MaxCount: opts.Limit, Qualifier: opts.Qualifier},
		logger,
	)
	if nil != err {
		return nil, err
	}

	out := p.root.Parsed(category)
	report := &Report{Files: len(items)}
	for i, item := range items {
		if err := ctx.Err(); nil != err {
			return report, err
		}
		logger.Info().Str("file", item.Path).Int("index", i+1).Int("total", len(items)).Msg("Iterating file")

		source := item.Name()
		shape, tables, err := flatten.Document(source, item.Doc)
		if nil != err {
			switch {
			case isPerFileError(err):
				logger.Error().Err(err).Str("file", item.Path).Msg("Failed to parse file, moving on")
				report.Failed++
				continue
			case errutil.IsFlaw(err):
				return report, err
			default:
				panic(errutil.UnknownError(err))
			}
		}
		for _, t := range tables {
			file := out.File(shape.FileName(t.Name, source), intake.ExtCSV)
			if err := flatten.Write(file, t); nil != err {
				return report, err
			}
			report.Written = append(report.Written, file.Path)
		}
		logger.Info().Str("file", item.Path).Msg("File parsed and saved")
	}
	return report, nil
}

func isPerFileError(err error) bool {
	var (
		decodeErr     *errutil.DecodeError
		validationErr *errutil.ValidationError
	)
	_, ok := errutil.IsAny(err, flatten.ErrNoArtists, flatten.ErrUnsupportedKind)
	return ok || errors.As(err, &decodeErr) || errors.As(err, &validationErr)
}

// WeeklyChartFiles flattens every raw weekly chart export.
func (p *Parser) WeeklyChartFiles(ctx context.Context, opts Options) (*Report, error) {
	category := fs.CategoryWeeklyCharts
	logger := p.logger.With().Str("category", category).Logger()
	logger.Info().Msg("Initializing weekly files parsing")
	if opts.Delimiter == 0 {
		opts.Delimiter = consolidate.DefaultDelimiter
	}

	items, err := intake.Scan(
		p.root.Raw(category).Path(),
		intake.Options{Extensions: []string{intake.ExtCSV}, MaxCount: opts.Limit, Qualifier: opts.Qualifier},
		logger,
	)
	if nil != err {
		return nil, err
	}

	var (
		shape  flatten.ChartShape
		out    = p.root.Parsed(category)
		report = &Report{Files: len(items)}
	)
	for i, item := range items {
		if err := ctx.Err(); nil != err {
			return report, err
		}
		logger.Info().Str("file", item.Path).Int("index", i+1).Int("total", len(items)).Msg("Iterating file")

		t, err := flattenChart(shape, item, opts.Delimiter)
		if nil != err {
			if errutil.IsFlaw(err) {
				return report, err
			}
			logger.Error().Err(err).Str("file", item.Path).Msg("Failed to parse weekly file, moving on")
			report.Failed++
			continue
		}
		file := out.File(shape.FileName(t.Name, item.Name()), intake.ExtCSV)
		if err := flatten.Write(file, t); nil != err {
			return report, err
		}
		report.Written = append(report.Written, file.Path)
	}
	return report, nil
}

func flattenChart(shape flatten.ChartShape, item intake.Item, delimiter rune) (t *flatten.Table, err error) {
	f, err := os.Open(item.Path)
	if nil != err {
		flawP := flaw.P{"file_path": item.Path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to open chart file: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			flawP := flaw.P{"file_path": item.Path, "err_debug_tree": errutil.Tree(closeErr).FlawP()}
			closeErr = flaw.From(fmt.Errorf("failed to close chart file: %v", closeErr)).Append(flawP)
			err = must.JoinClose(err, closeErr)
		}
	}()
	return shape.Flatten(item.Name(), f, delimiter)
}

// Consolidate merges the parsed CSV files of category passing opts into
// data/consolidated/<category>/<name>.csv.
func (p *Parser) Consolidate(ctx context.Context, category, name string, opts Options) (string, error) {
	return p.consolidate(ctx, category, name, "", opts)
}

// consolidate is Consolidate restricted to files whose name starts with
// prefix.
func (p *Parser) consolidate(ctx context.Context, category, name, prefix string, opts Options) (string, error) {
	if name == "" {
		return "", errutil.Invalid("name", "must be a non-empty string")
	}
	if err := ctx.Err(); nil != err {
		return "", err
	}
	logger := p.logger.With().Str("category", category).Str("name", name).Logger()

	items, err := intake.Scan(
		p.root.Parsed(category).Path(),
		intake.Options{Extensions: []string{intake.ExtCSV}, MaxCount: opts.Limit, Qualifier: opts.Qualifier, Prefix: prefix, ListOnly: true},
		logger,
	)
	if nil != err {
		return "", err
	}

	output := p.root.Consolidated(category).File(name, intake.ExtCSV)
	if _, err := consolidate.Files(intake.Paths(items), output, opts.Delimiter, logger); nil != err {
		return "", err
	}
	return output.Path, nil
}

// ConsolidateAudioAnalysis merges parsed analysis files once per table,
// selecting each table's files by their "<table>_" name prefix.
func (p *Parser) ConsolidateAudioAnalysis(ctx context.Context, opts Options) ([]string, error) {
	shape := flatten.AudioAnalysisShape{}
	var written []string
	for _, table := range shape.Tables() {
		path, err := p.consolidate(ctx, fs.CategoryAudioAnalysis, "consolidated_"+table, table+"_", opts)
		if nil != err {
			var validationErr *errutil.ValidationError
			if errors.As(err, &validationErr) {
				p.logger.Warn().Func(log.Flaw(err)).Str("table", table).Msg("No parsed files to consolidate for table")
				continue
			}
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
