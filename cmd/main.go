package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotdata/config"
	"github.com/xeptore/spotdata/constant"
	"github.com/xeptore/spotdata/ctxutil"
	"github.com/xeptore/spotdata/fs"
	"github.com/xeptore/spotdata/log"
)

const (
	flagConfigFilePath = "config"
	flagIDs            = "id"
	flagIDsFile        = "ids-file"
	flagLimit          = "limit"
	flagQualifier      = "qualifier"
	flagDelimiter      = "delimiter"

	shutdownGrace = 5 * time.Second
)

func main() {
	logger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	defer func() {
		if r := recover(); nil != r {
			logger.Fatal().Func(log.Panic(r)).Msg("Application panicked")
		}
	}()

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "spotdata",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "Spotify catalog and charts dataset builder",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     flagConfigFilePath,
				Aliases:  []string{"c"},
				Usage:    "Config file path",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			tracksCommand(),
			featuresCommand(),
			analysisCommand(),
			artistsCommand(),
			albumsCommand(),
			weeklyCommand(),
			kworbCommand(),
			parseCommand(),
			consolidateCommand(),
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	root   fs.Root
	logger zerolog.Logger
	// ctx stays alive for a short grace period after a signal so that the
	// artifact being written can be finished.
	ctx    context.Context
	cancel context.CancelFunc
	closer io.Closer
}

func (e *env) close() {
	e.cancel()
	if nil != e.closer {
		if err := e.closer.Close(); nil != err {
			e.logger.Error().Err(err).Msg("Failed to close log file")
		}
	}
}

func setup(cliCtx *cli.Context) (*env, error) {
	cfg, err := loadConfig(cliCtx)
	if nil != err {
		return nil, err
	}

	var (
		logger zerolog.Logger
		closer io.Closer
	)
	if cfg.LogToFile {
		w := log.NewFileWriter(cfg.LogDir, cliCtx.Command.Name, time.Now().UTC().Format("20060102T150405"))
		logger = log.NewTee(os.Stdout, w)
		closer = w
	} else {
		logger = log.NewPretty(os.Stdout)
	}
	logger = logger.Level(zerolog.TraceLevel).With().Str("command", cliCtx.Command.Name).Logger()

	signalCtx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := ctxutil.WithDelayedTimeout(signalCtx, shutdownGrace)

	return &env{
		cfg:    cfg,
		root:   fs.From(cfg.ProjectRoot),
		logger: logger,
		ctx:    ctx,
		cancel: func() { cancel(); stop() },
		closer: closer,
	}, nil
}

func loadConfig(cliCtx *cli.Context) (*config.Config, error) {
	var (
		cfgFilePath = cliCtx.String(flagConfigFilePath)
		cfgEnv      = os.Getenv("SPOTDATA_CONFIG")
	)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath != "":
		cfg, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	case cfgEnv != "":
		cfg, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return cfg, nil
	default:
		return config.Default(), nil
	}
}

//nolint:exhaustruct
func idsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  flagIDs,
			Usage: "Spotify id, repeatable",
		},
		&cli.StringFlag{
			Name:  flagIDsFile,
			Usage: "File with whitespace separated Spotify ids",
		},
	}
}

// idsOf merges ids passed with flagIDs and those read from flagIDsFile.
func idsOf(cliCtx *cli.Context) ([]string, error) {
	ids := cliCtx.StringSlice(flagIDs)
	if path := cliCtx.String(flagIDsFile); path != "" {
		b, err := os.ReadFile(path)
		if nil != err {
			return nil, fmt.Errorf("failed to read ids file %q: %v", path, err)
		}
		ids = append(ids, strings.Fields(string(b))...)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one id is required through --%s or --%s", flagIDs, flagIDsFile)
	}
	return ids, nil
}
