package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Felipe408821/GeoJsonMapGenerator/internal/logger"
)

// DefaultInterval is the delay between two checks of the page.
const DefaultInterval = 500 * time.Millisecond

// ErrPollExhausted is returned when a bounded Poller gives up.
var ErrPollExhausted = errors.New("target elements did not appear")

// Poller repeatedly checks a Page until a selector matches.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Logger      *slog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the delay between checks. Non-positive values keep DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.Interval = d
		}
	}
}

// WithMaxAttempts bounds the number of checks. Negative values become 0 (no limit).
func WithMaxAttempts(n int) Option {
	if n < 0 {
		n = 0
	}
	return func(p *Poller) { p.MaxAttempts = n }
}

// WithLogger sets the logger used for poll events. Nil means slog.Default().
func WithLogger(l *slog.Logger) Option { return func(p *Poller) { p.Logger = l } }

// NewPoller constructs a Poller using the provided functional options.
func NewPoller(opts ...Option) *Poller {
	p := &Poller{Interval: DefaultInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Wait checks page once per interval, the first check one interval after the
// call, until sel matches at least one element. It returns the match count
// seen on the successful check. Failed checks count as "not yet".
func (p *Poller) Wait(ctx context.Context, page Page, sel string) (int, error) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}

		n, err := page.Count(ctx, sel)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			p.log().Warn("poll_error", slog.String("selector", sel), slog.Int("attempt", attempt), slog.Any("error", err))
			n = 0
		}
		logger.LogPollAttempt(p.Logger, sel, attempt, n)
		if n > 0 {
			logger.LogMatchesFound(p.Logger, sel, attempt, n)
			return n, nil
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return 0, fmt.Errorf("%w: %q after %d attempts", ErrPollExhausted, sel, attempt)
		}
	}
}

// Run waits for sel to match and then calls extract exactly once.
func (p *Poller) Run(ctx context.Context, page Page, sel string, extract func(context.Context) error) error {
	if _, err := p.Wait(ctx, page, sel); err != nil {
		return err
	}
	return extract(ctx)
}

func (p *Poller) log() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
