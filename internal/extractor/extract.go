package extractor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Felipe408821/GeoJsonMapGenerator/internal/logger"
)

// ErrNoMatches is returned by Extract when the selector matches nothing.
var ErrNoMatches = errors.New("no matching elements")

// Extract returns the inner HTML of every element matching sel, in document
// order. With no matches it logs an error and returns ErrNoMatches.
func Extract(ctx context.Context, page Page, sel string, l *slog.Logger) ([]string, error) {
	contents, err := page.InnerHTML(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		logger.LogNoMatches(l, sel)
		return nil, ErrNoMatches
	}
	return contents, nil
}
