package extractor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultOutName is the file name of the extraction download.
const DefaultOutName = "stop_links_content.json"

// EncodeJSON encodes contents as a JSON array indented by two spaces, byte for
// byte what JSON.stringify(contents, null, 2) produces: markup is kept verbatim
// rather than escaped to \u003c sequences, and U+2028/U+2029 are written raw.
func EncodeJSON(contents []string) ([]byte, error) {
	if contents == nil {
		contents = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contents); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators rewrites the \u2028 and \u2029 escapes that
// encoding/json always emits back to the raw characters. Escapes are walked
// pairwise so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if rest := data[i+1:]; bytes.HasPrefix(rest, []byte("u2028")) || bytes.HasPrefix(rest, []byte("u2029")) {
			if rest[4] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// SaveJSON writes contents as JSON to path.
func SaveJSON(path string, contents []string) error {
	data, err := EncodeJSON(contents)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// EncodeStopsCSV encodes stops as CSV with header.
func EncodeStopsCSV(stops []Stop) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// header
	if err := w.Write([]string{"position", "text", "parts"}); err != nil {
		return nil, err
	}
	for _, s := range stops {
		if err := w.Write([]string{strconv.Itoa(s.Position), s.Text, strings.Join(s.Parts, " | ")}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveStopsCSV writes stops as CSV to the given file path.
func SaveStopsCSV(path string, stops []Stop) error {
	data, err := EncodeStopsCSV(stops)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temp file in path's directory and renames
// it over path. The temp file never survives a failed write.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
