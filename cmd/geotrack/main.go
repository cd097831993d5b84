package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/geotrack/geotrack/internal/config"
	"github.com/geotrack/geotrack/internal/models"
	"github.com/geotrack/geotrack/internal/output"
	"github.com/geotrack/geotrack/internal/parser"
	"github.com/geotrack/geotrack/internal/pipeline"
	"github.com/geotrack/geotrack/internal/storage"
	"github.com/geotrack/geotrack/internal/timezone"
	"github.com/spf13/afero"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageHeader = `Combine geotagged data into a single useful track.

Usage: geotrack <path...> [flags]

Paths may be GPX track logs, XMP sidecars or directories searched
recursively for both. Without -o the merged GPX is written to stdout.

Sidecar timestamps other than GPSTimeStamp are camera wall clock. Unless
--use-geo-timezone is given they are taken as UTC unchanged, which is only
right for cameras set to UTC. A timestamp that carries an explicit offset
(e.g. 2018-06-01T08:00:00-04:00) is always converted by that offset.

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, afero.NewOsFs()))
}

type cliFlags struct {
	interval       float64
	shift          float64
	useGeoTimezone bool
	output         string
	format         string
	duckdb         string
	configPath     string
	initConfig     string
	verbose        bool
	version        bool
}

func run(args []string, stdout, stderr io.Writer, fs afero.Fs) int {
	logger := log.New(stderr, "", 0)

	flags := flag.NewFlagSet("geotrack", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var cf cliFlags
	flags.Float64Var(&cf.interval, "interval", 1.0, "Minimum interval between points in tracks [s].")
	flags.Float64Var(&cf.shift, "shift", 0.0, "Seconds added to sidecar timestamps.")
	flags.BoolVar(&cf.useGeoTimezone, "use-geo-timezone", false, "Localize sidecar wall clock times by their coordinates. Explicit offsets are honoured either way.")
	flags.StringVar(&cf.output, "o", "", "Output file name (shorthand).")
	flags.StringVar(&cf.output, "output", "", "Output file name.")
	flags.StringVar(&cf.format, "format", "gpx", "Output format: gpx, json or msgpack.")
	flags.StringVar(&cf.duckdb, "duckdb", "", "Also append the merged positions to this DuckDB file.")
	flags.StringVar(&cf.configPath, "config", "", "Configuration file (.xml, .yaml or .yml).")
	flags.StringVar(&cf.initConfig, "init-config", "", "Write the default configuration to this file and exit.")
	flags.BoolVar(&cf.verbose, "verbose", false, "Print one line per decoded file.")
	flags.BoolVar(&cf.version, "version", false, "Print version and exit.")
	flags.Usage = func() {
		fmt.Fprint(stderr, usageHeader)
		flags.PrintDefaults()
	}

	paths, err := parseInterspersed(flags, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if cf.version {
		fmt.Fprintf(stdout, "geotrack %s (built %s)\n", Version, BuildTime)
		return exitOK
	}

	if cf.initConfig != "" {
		if err := config.DefaultConfig().Save(fs, cf.initConfig); err != nil {
			logger.Printf("error: %v", err)
			return exitError
		}
		logger.Printf("Wrote default configuration to %s", cf.initConfig)
		return exitOK
	}

	cfg, err := config.Load(fs, cf.configPath)
	if err != nil {
		logger.Printf("error: %v", err)
		return exitError
	}
	applyFlags(cfg, flags, cf)

	if err := cfg.Validate(); err != nil {
		logger.Printf("error: %v", err)
		flags.Usage()
		return exitUsage
	}
	if len(paths) == 0 {
		logger.Printf("error: at least one file or directory is required")
		flags.Usage()
		return exitUsage
	}

	if err := merge(cfg, paths, stdout, logger, fs); err != nil {
		logger.Printf("error: %v", err)
		return exitError
	}
	return exitOK
}

func merge(cfg *config.AppConfig, paths []string, stdout io.Writer, logger *log.Logger, fs afero.Fs) error {
	store := storage.NewLocalStore(fs)

	opts := parser.Options{
		Interval: cfg.Interval(),
		Shift:    cfg.Shift(),
	}
	if cfg.Track.UseGeoTimezone {
		opts.Zones = timezone.NewResolver()
	}

	p := pipeline.New(store, parser.NewDefaultRegistry(store, opts), pipeline.Options{
		Logger:  logger,
		Verbose: cfg.Advanced.Verbose,
	})

	merged, _, err := p.Run(paths)
	if err != nil {
		return err
	}

	if err := writeTrack(store, cfg.Output, merged, stdout); err != nil {
		return err
	}

	if cfg.Output.DuckDBPath != "" {
		ds, err := storage.OpenDuckStore(cfg.Output.DuckDBPath)
		if err != nil {
			return err
		}
		defer ds.Close()

		runID, err := ds.AppendRun(context.Background(), merged.Positions)
		if err != nil {
			return err
		}
		logger.Printf("Archived %d positions to %s (run %s)", len(merged.Positions), ds.Path(), runID)
	}

	return nil
}

// writeTrack writes the document to the configured path, or to stdout when
// no path is set.
func writeTrack(store storage.Store, oc config.OutputConfig, merged *models.MergedTrack, stdout io.Writer) error {
	opts := output.Options{
		Format:  output.Format(oc.Format),
		Creator: oc.Creator,
		Indent:  oc.Indent,
	}
	if oc.Path == "" {
		return output.Write(stdout, merged, opts)
	}

	f, err := store.Create(oc.Path)
	if err != nil {
		return err
	}
	if err := output.Write(f, merged, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", oc.Path, err)
	}
	return nil
}

// applyFlags overrides configuration with the flags given on the command line.
func applyFlags(cfg *config.AppConfig, flags *flag.FlagSet, cf cliFlags) {
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Track.IntervalSeconds = cf.interval
		case "shift":
			cfg.Track.ShiftSeconds = cf.shift
		case "use-geo-timezone":
			cfg.Track.UseGeoTimezone = cf.useGeoTimezone
		case "o", "output":
			cfg.Output.Path = cf.output
		case "format":
			cfg.Output.Format = strings.ToLower(cf.format)
		case "duckdb":
			cfg.Output.DuckDBPath = cf.duckdb
		case "verbose":
			cfg.Advanced.Verbose = cf.verbose
		}
	})
}

// parseInterspersed parses flags that may appear before, between or after
// the positional paths.
func parseInterspersed(flags *flag.FlagSet, args []string) ([]string, error) {
	var paths []string
	for {
		if err := flags.Parse(args); err != nil {
			return nil, err
		}
		rest := flags.Args()
		if len(rest) == 0 {
			return paths, nil
		}
		paths = append(paths, rest[0])
		args = rest[1:]
	}
}
