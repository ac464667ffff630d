package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// DocumentPage is a Page over a fixed, already loaded HTML document.
type DocumentPage struct {
	doc *goquery.Document
}

// NewDocumentPage parses r as HTML.
func NewDocumentPage(r io.Reader) (*DocumentPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &DocumentPage{doc: doc}, nil
}

// OpenDocumentFile parses the HTML file at path.
func OpenDocumentFile(path string) (*DocumentPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewDocumentPage(f)
}

// Count implements Page.
func (p *DocumentPage) Count(_ context.Context, sel string) (int, error) {
	return p.doc.Find(sel).Length(), nil
}

// InnerHTML implements Page.
func (p *DocumentPage) InnerHTML(_ context.Context, sel string) ([]string, error) {
	return innerHTMLOf(p.doc.Find(sel))
}

func innerHTMLOf(s *goquery.Selection) ([]string, error) {
	out := make([]string, 0, s.Length())
	var err error
	s.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		var h string
		if h, err = el.Html(); err != nil {
			return false
		}
		out = append(out, h)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("render innerHTML: %w", err)
	}
	return out, nil
}

// HTTPPage is a Page that re-fetches the URL on every query. It only sees
// server-rendered markup; script-built DOM needs BrowserPage.
type HTTPPage struct {
	URL            string
	RequestTimeout time.Duration
}

// NewHTTPPage returns an HTTPPage for url. A zero timeout keeps colly's default.
func NewHTTPPage(url string, timeout time.Duration) *HTTPPage {
	return &HTTPPage{URL: url, RequestTimeout: timeout}
}

// newCollector builds a collector with browser-like request headers. Colly
// drops callbacks on Clone, so every snapshot gets a fresh one.
func (p *HTTPPage) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.Context = ctx
	if p.RequestTimeout > 0 {
		c.SetRequestTimeout(p.RequestTimeout)
	}
	extensions.RandomUserAgent(c)
	extensions.Referer(c)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})
	return c
}

// Count implements Page.
func (p *HTTPPage) Count(ctx context.Context, sel string) (int, error) {
	doc, err := p.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return doc.Find(sel).Length(), nil
}

// InnerHTML implements Page.
func (p *HTTPPage) InnerHTML(ctx context.Context, sel string) ([]string, error) {
	doc, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return innerHTMLOf(doc.Find(sel))
}

// snapshot fetches the page once and parses the body.
func (p *HTTPPage) snapshot(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := p.newCollector(ctx)

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) { body = r.Body })
	c.OnError(func(r *colly.Response, err error) { fetchErr = err })

	if err := c.Visit(p.URL); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.URL, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.URL, fetchErr)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.URL, err)
	}
	return doc, nil
}
