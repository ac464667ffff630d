package extractor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// BrowserPage is a Page backed by a live Chrome tab driven through chromedp.
type BrowserPage struct {
	Headless        bool
	UserAgent       string
	NavigateTimeout time.Duration

	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// BrowserOption configures a BrowserPage.
type BrowserOption func(*BrowserPage)

// WithHeadless sets whether to run Chrome in headless mode.
func WithHeadless(b bool) BrowserOption { return func(p *BrowserPage) { p.Headless = b } }

// WithUserAgent overrides the browser user agent. Empty keeps the default.
func WithUserAgent(ua string) BrowserOption {
	return func(p *BrowserPage) {
		if ua != "" {
			p.UserAgent = ua
		}
	}
}

// WithNavigateTimeout bounds the initial navigation. Negative values are clamped to 0 (no timeout).
func WithNavigateTimeout(d time.Duration) BrowserOption {
	if d < 0 {
		d = 0
	}
	return func(p *BrowserPage) { p.NavigateTimeout = d }
}

// OpenBrowserPage starts Chrome, opens a tab and navigates it to url. The
// page's elements may not exist yet; callers poll for them. Close must be
// called to shut the browser down.
func OpenBrowserPage(ctx context.Context, url string, opts ...BrowserOption) (*BrowserPage, error) {
	p := &BrowserPage{
		Headless:        true,
		UserAgent:       defaultUserAgent,
		NavigateTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent(p.UserAgent),
	)

	// The browser outlives any single call, so it hangs off Background and
	// per-call contexts are bridged in run.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)
	p.tab, p.cancelTab, p.cancelAlloc = tab, cancelTab, cancelAlloc

	// Start the browser on the tab context itself; a first Run on a derived
	// context would tie the browser's lifetime to that context.
	if err := chromedp.Run(tab); err != nil {
		p.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	navCtx := ctx
	if p.NavigateTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, p.NavigateTimeout)
		defer cancel()
	}
	if err := p.run(navCtx, chromedp.Navigate(url)); err != nil {
		p.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	return p, nil
}

// Count implements Page.
func (p *BrowserPage) Count(ctx context.Context, sel string) (int, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return 0, fmt.Errorf("query nodes %q: %w", sel, err)
	}
	return len(nodes), nil
}

// InnerHTML implements Page.
func (p *BrowserPage) InnerHTML(ctx context.Context, sel string) ([]string, error) {
	js := fmt.Sprintf(`(() => Array.from(document.querySelectorAll(%s), el => el.innerHTML))()`, strconv.Quote(sel))
	var list []string
	if err := p.run(ctx, chromedp.Evaluate(js, &list)); err != nil {
		return nil, fmt.Errorf("evaluate innerHTML %q: %w", sel, err)
	}
	return list, nil
}

// Close shuts down the tab and the browser process.
func (p *BrowserPage) Close() {
	if p.cancelTab != nil {
		p.cancelTab()
	}
	if p.cancelAlloc != nil {
		p.cancelAlloc()
	}
}

// run executes actions on the tab, aborting them when ctx is done. Cancelling
// a context derived from the tab stops the actions without closing the tab.
func (p *BrowserPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
