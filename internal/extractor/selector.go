package extractor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
)

const (
	// DefaultTag and DefaultClass identify the stop links on the line page.
	// The class is generated by the site's CSS modules build and changes
	// between deployments.
	DefaultTag   = "a"
	DefaultClass = "Line_stopLink__ZTJKK"
)

// ClassSelector builds a "tag.class" CSS selector, escaping the class the way
// CSS.escape does so names like "1abc" or "md:flex" still match. An empty tag
// matches any element. The result is compiled before it is returned.
func ClassSelector(tag, class string) (string, error) {
	if class == "" {
		return "", fmt.Errorf("empty class name")
	}
	if strings.ContainsAny(class, " \t\n\r\f") {
		return "", fmt.Errorf("invalid class name %q: classes cannot contain whitespace", class)
	}
	sel := tag + "." + escapeIdent(class)
	if _, err := cascadia.Compile(sel); err != nil {
		return "", fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	return sel, nil
}

// escapeIdent serializes s as a CSS identifier (CSSOM "serialize an identifier").
func escapeIdent(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('�')
		case (r >= 0x01 && r <= 0x1f) || r == 0x7f,
			i == 0 && r >= '0' && r <= '9',
			i == 1 && r >= '0' && r <= '9' && runes[0] == '-':
			b.WriteString(`\` + strconv.FormatInt(int64(r), 16) + " ")
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString(`\-`)
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
