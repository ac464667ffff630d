package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Felipe408821/GeoJsonMapGenerator/internal/config"
	"github.com/Felipe408821/GeoJsonMapGenerator/internal/extractor"
	"github.com/Felipe408821/GeoJsonMapGenerator/internal/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(2)
	}
}

func newApp() *cli.App {
	def := config.Default()
	return &cli.App{
		Name:  "stoplinks",
		Usage: "wait for the stop links of a line page and save their content as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "url", Usage: "page to load"},
			&cli.StringFlag{Name: "file", Usage: "local HTML file instead of a URL"},
			&cli.StringFlag{Name: "source", Value: def.Source, Usage: "browser or http"},
			&cli.StringFlag{Name: "tag", Value: def.Tag, Usage: "element tag of the stop links"},
			&cli.StringFlag{Name: "class", Value: def.Class, Usage: "CSS class of the stop links"},
			&cli.DurationFlag{Name: "interval", Value: def.Interval, Usage: "delay between page checks"},
			&cli.IntFlag{Name: "max-attempts", Value: def.MaxAttempts, Usage: "max page checks (0 = no limit)"},
			&cli.DurationFlag{Name: "timeout", Value: def.Timeout, Usage: "overall timeout (0 = none)"},
			&cli.StringFlag{Name: "out-dir", Value: def.OutDir, Usage: "directory for the JSON file"},
			&cli.StringFlag{Name: "out-name", Value: def.OutName, Usage: "name of the JSON file"},
			&cli.StringFlag{Name: "stops-csv", Usage: "also write parsed stops as CSV to this path"},
			&cli.BoolFlag{Name: "headless", Value: def.Headless, Usage: "run headless Chrome"},
			&cli.StringFlag{Name: "user-agent", Usage: "browser user agent override"},
			&cli.StringFlag{Name: "log-file", Usage: "also write JSON logs to this rotated file"},
			&cli.BoolFlag{Name: "quiet", Usage: "only log errors"},
			&cli.BoolFlag{Name: "debug", Usage: "log every page check"},
		},
		Action: run,
		// main owns the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, 1)
	}
	sel, err := cfg.Selector()
	if err != nil {
		return cli.Exit(err, 1)
	}
	// A file never changes, so one check is enough.
	attempts := cfg.MaxAttempts
	if cfg.File != "" && attempts == 0 {
		attempts = 1
	}

	level := slog.LevelInfo
	switch {
	case c.Bool("quiet"):
		level = slog.LevelError
	case c.Bool("debug"):
		level = slog.LevelDebug
	}
	log, closer := logger.New(logger.Options{Level: level, LogFile: cfg.LogFile})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	page, closePage, err := openPage(ctx, cfg)
	if err != nil {
		log.Error("open_page", slog.Any("error", err))
		return cli.Exit(err, 2)
	}
	defer closePage()

	job := &extractor.Job{
		Page:     page,
		Selector: sel,
		Poller: extractor.NewPoller(
			extractor.WithInterval(cfg.Interval),
			extractor.WithMaxAttempts(attempts),
			extractor.WithLogger(log),
		),
		OutDir:   cfg.OutDir,
		OutName:  cfg.OutName,
		StopsCSV: cfg.StopsCSV,
		Logger:   log,
	}
	res, err := job.Run(ctx)
	switch {
	case errors.Is(err, extractor.ErrNoMatches), errors.Is(err, extractor.ErrPollExhausted):
		return cli.Exit(err, 1)
	case err != nil:
		log.Error("extract_failed", slog.Any("error", err))
		return cli.Exit(err, 2)
	}
	log.Info("done", slog.String("path", res.Path), slog.Int("entries", len(res.Contents)))
	return nil
}

// loadConfig merges defaults, the --config file and explicitly set flags,
// in increasing precedence.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	strs := map[string]*string{
		"url":        &cfg.URL,
		"file":       &cfg.File,
		"source":     &cfg.Source,
		"tag":        &cfg.Tag,
		"class":      &cfg.Class,
		"out-dir":    &cfg.OutDir,
		"out-name":   &cfg.OutName,
		"stops-csv":  &cfg.StopsCSV,
		"user-agent": &cfg.UserAgent,
		"log-file":   &cfg.LogFile,
	}
	for name, dst := range strs {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("interval") {
		cfg.Interval = c.Duration("interval")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("max-attempts") {
		cfg.MaxAttempts = c.Int("max-attempts")
	}
	if c.IsSet("headless") {
		cfg.Headless = c.Bool("headless")
	}
	return cfg, nil
}

func openPage(ctx context.Context, cfg config.Config) (extractor.Page, func(), error) {
	if cfg.File != "" {
		p, err := extractor.OpenDocumentFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		return p, func() {}, nil
	}
	if cfg.Source == config.SourceHTTP {
		return extractor.NewHTTPPage(cfg.URL, 10*time.Second), func() {}, nil
	}
	p, err := extractor.OpenBrowserPage(ctx, cfg.URL,
		extractor.WithHeadless(cfg.Headless),
		extractor.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}
