package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Felipe408821/GeoJsonMapGenerator/internal/logger"
)

// Job waits for the stop links to appear on Page, extracts them once and
// writes the JSON download file.
type Job struct {
	Page     Page
	Selector string
	Poller   *Poller
	OutDir   string
	OutName  string
	// StopsCSV, when set, also writes the parsed stops as CSV.
	StopsCSV string
	Logger   *slog.Logger
}

// Result describes what a Job produced.
type Result struct {
	Path     string
	Contents []string
	Stops    []Stop
}

// Run polls until the selector matches, then extracts and saves. No file is
// written when extraction finds nothing.
func (j *Job) Run(ctx context.Context) (Result, error) {
	poller := j.Poller
	if poller == nil {
		poller = NewPoller(WithLogger(j.Logger))
	}
	name := j.OutName
	if name == "" {
		name = DefaultOutName
	}

	var res Result
	err := poller.Run(ctx, j.Page, j.Selector, func(ctx context.Context) error {
		contents, err := Extract(ctx, j.Page, j.Selector, j.Logger)
		if err != nil {
			return err
		}
		path := filepath.Join(j.OutDir, name)
		if err := SaveJSON(path, contents); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		logger.LogSaved(j.Logger, path, len(contents))
		res.Path, res.Contents = path, contents

		if j.StopsCSV == "" {
			return nil
		}
		stops, err := ParseStops(contents)
		if err != nil {
			return fmt.Errorf("parse stops: %w", err)
		}
		if err := SaveStopsCSV(j.StopsCSV, stops); err != nil {
			return fmt.Errorf("save %s: %w", j.StopsCSV, err)
		}
		logger.LogSaved(j.Logger, j.StopsCSV, len(stops))
		res.Stops = stops
		return nil
	})
	return res, err
}
