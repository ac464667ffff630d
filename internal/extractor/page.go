package extractor

import "context"

// Page is a queryable DOM. Implementations must return matches in document
// order.
type Page interface {
	// Count reports how many elements currently match sel. It must not block
	// waiting for matches to appear.
	Count(ctx context.Context, sel string) (int, error)
	// InnerHTML returns the inner HTML of every element matching sel.
	InnerHTML(ctx context.Context, sel string) ([]string, error)
}
