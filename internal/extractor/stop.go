package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Stop is the structured view of one extracted stop link.
type Stop struct {
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Parts    []string `json:"parts"`
	HTML     string   `json:"html"`
}

// ParseStops parses each inner HTML fragment into a Stop. Position is 1-based
// and follows the order of contents.
func ParseStops(contents []string) ([]Stop, error) {
	stops := make([]Stop, 0, len(contents))
	for i, h := range contents {
		s, err := parseStop(h)
		if err != nil {
			return nil, fmt.Errorf("stop %d: %w", i+1, err)
		}
		s.Position = i + 1
		stops = append(stops, s)
	}
	return stops, nil
}

func parseStop(fragment string) (Stop, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Stop{}, err
	}
	body := doc.Find("body")

	s := Stop{HTML: fragment, Text: normalizeSpace(body.Text())}
	body.Children().Each(func(_ int, el *goquery.Selection) {
		if t := normalizeSpace(el.Text()); t != "" {
			s.Parts = append(s.Parts, t)
		}
	})
	if len(s.Parts) == 0 && s.Text != "" {
		s.Parts = []string{s.Text}
	}
	return s, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
