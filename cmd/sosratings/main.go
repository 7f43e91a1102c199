// Command sosratings prints strength-of-schedule adjusted offense and
// defense ratings for every team of a league season.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sosratings/internal/client"
	"sosratings/internal/config"
	"sosratings/internal/models"
	"sosratings/internal/pipeline"
	"sosratings/internal/table"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	concurrency int
	query       models.SeasonQuery
	top         int
	reverse     bool
	defense     bool
	offense     bool
	format      table.Format
	version     bool
}

func (o *options) tableOptions() table.Options {
	opts := table.Options{Reverse: o.reverse, Top: o.top}
	switch {
	case o.defense:
		opts.SortBy = table.SortDefense
	case o.offense:
		opts.SortBy = table.SortOffense
	}
	return opts
}

// parseOptions parses the command line on top of the configured defaults
func parseOptions(args []string, cfg *config.Config, output io.Writer) (*options, error) {
	q := cfg.Query()
	opts := &options{}
	var format string

	fs := flag.NewFlagSet("sosratings", flag.ContinueOnError)
	fs.SetOutput(output)

	intVar := func(p *int, short, long string, value int, usage string) {
		fs.IntVar(p, short, value, usage)
		fs.IntVar(p, long, value, usage)
	}
	stringVar := func(p *string, short, long, value, usage string) {
		fs.StringVar(p, short, value, usage)
		fs.StringVar(p, long, value, usage)
	}
	boolVar := func(p *bool, short, long, usage string) {
		fs.BoolVar(p, short, false, usage)
		fs.BoolVar(p, long, false, usage)
	}

	intVar(&opts.concurrency, "c", "max-concurrency", cfg.MaxConcurrency, "maximum number of schedule requests in flight")
	stringVar(&opts.query.Sport, "s", "sport", q.Sport, "sport, e.g. football")
	stringVar(&opts.query.League, "l", "league", q.League, "league, e.g. college-football")
	intVar(&opts.query.Season, "S", "season", q.Season, "season year")
	intVar(&opts.query.Group, "g", "group", q.Group, "restrict discovery to a group, 0 for every team")
	intVar(&opts.top, "t", "top", 0, "only show the top N rows, 0 for every row")
	boolVar(&opts.reverse, "r", "reverse", "reverse the row order")
	boolVar(&opts.defense, "d", "defense", "order rows by defense rating")
	boolVar(&opts.offense, "o", "offense", "order rows by offense rating")
	stringVar(&format, "f", "format", string(table.FormatTable), "output format: table, csv or json")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if opts.version {
		return opts, nil
	}

	if opts.defense && opts.offense {
		return nil, errors.New("--defense and --offense cannot be used together")
	}
	if opts.concurrency < 1 {
		return nil, errors.New("--max-concurrency must be at least 1")
	}
	if opts.top < 0 {
		return nil, errors.New("--top must not be negative")
	}
	if err := opts.query.Validate(); err != nil {
		return nil, err
	}

	f, err := table.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	opts.format = f

	return opts, nil
}

// setupLogger sends logs to stderr so stdout only carries the ratings
func setupLogger(w io.Writer, level string) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	opts, err := parseOptions(args, cfg, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "sosratings: %v\n", err)
		return 1
	}

	if opts.version {
		fmt.Fprintf(stdout, "sosratings version %s\n", version)
		return 0
	}

	setupLogger(stderr, cfg.LogLevel)

	espn := client.NewClient(
		cfg.ESPNCoreBaseURL,
		cfg.ESPNSiteBaseURL,
		cfg.ESPNTimeout,
		client.WithPageLimit(cfg.ESPNPageLimit),
		client.WithUserAgent(cfg.ESPNUserAgent),
	)

	result, err := pipeline.Run(ctx, espn, opts.query, opts.concurrency)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute ratings")
		return 1
	}

	rows := table.Build(result.Ratings, opts.tableOptions())
	if err := table.Write(stdout, rows, opts.format); err != nil {
		log.Error().Err(err).Msg("Failed to write ratings")
		return 1
	}

	return 0
}
