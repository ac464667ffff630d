package extractor

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeJSON_IndentedWithoutHTMLEscaping(t *testing.T) {
	data, err := EncodeJSON([]string{`<span class="n">1</span>`, "Sol & Luna"})
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}
	want := "[\n  \"<span class=\\\"n\\\">1</span>\",\n  \"Sol & Luna\"\n]"
	if string(data) != want {
		t.Fatalf("unexpected encoding.\nwant: %q\n got: %q", want, string(data))
	}
}

func TestEncodeJSON_LineSeparatorsWrittenRaw(t *testing.T) {
	data, err := EncodeJSON([]string{"a\u2028b\u2029c", `literal \u2028`})
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}
	want := "[\n  \"a\u2028b\u2029c\",\n  \"literal \\\\u2028\"\n]"
	if string(data) != want {
		t.Fatalf("unexpected encoding.\nwant: %q\n got: %q", want, string(data))
	}
	var back []string
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back[0] != "a\u2028b\u2029c" || back[1] != `literal \u2028` {
		t.Fatalf("round trip changed values: %q", back)
	}
}

func TestEncodeJSON_NilIsEmptyArray(t *testing.T) {
	data, err := EncodeJSON(nil)
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [], got %q", data)
	}
}

func TestSaveJSON_WritesFileAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultOutName)
	if err := SaveJSON(path, []string{"a"}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file written: %v", err)
	}
	if string(b) != "[\n  \"a\"\n]" {
		t.Fatalf("unexpected content %q", b)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, got %d entries", len(entries))
	}
}

func TestSaveStopsCSV_AndReadBack(t *testing.T) {
	stops := []Stop{
		{Position: 1, Text: "08123 Plaza Mayor", Parts: []string{"08123", "Plaza Mayor"}},
		{Position: 2, Text: "Gran Via, 4", Parts: []string{"Gran Via, 4"}},
	}
	path := filepath.Join(t.TempDir(), "stops.csv")
	if err := SaveStopsCSV(path, stops); err != nil {
		t.Fatalf("SaveStopsCSV: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (header + 2), got %d", len(rows))
	}
	if rows[0][0] != "position" || rows[1][2] != "08123 | Plaza Mayor" || rows[2][1] != "Gran Via, 4" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
