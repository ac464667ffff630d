package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
)

const linePage = `<!doctype html><html><body>
<nav><a class="Header_link__x" href="/">Inicio</a></nav>
<ul>
  <li><a class="Line_stopLink__ZTJKK" href="/paradas/1"><span>08123</span><span>Plaza Mayor</span></a></li>
  <li><a class="Line_stopLink__ZTJKK" href="/paradas/2"><span>08124</span><span>Gran Via</span></a></li>
</ul>
</body></html>`

func writePage(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "line.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return path
}

func TestRun_FileSourceWritesJSON(t *testing.T) {
	outDir := t.TempDir()
	csvPath := filepath.Join(outDir, "stops.csv")
	args := []string{"stoplinks",
		"--file", writePage(t, linePage),
		"--out-dir", outDir,
		"--interval", "5ms",
		"--stops-csv", csvPath,
		"--quiet",
	}
	if err := newApp().Run(args); err != nil {
		t.Fatalf("run: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(outDir, "stop_links_content.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var got []string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{
		"<span>08123</span><span>Plaza Mayor</span>",
		"<span>08124</span><span>Gran Via</span>",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(csvPath); err != nil {
		t.Fatalf("expected stops csv: %v", err)
	}
}

func TestRun_ConfigFileAndFlagPrecedence(t *testing.T) {
	outDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "stoplinks.yaml")
	cfg := "file: " + writePage(t, linePage) + "\nout_name: from_config.json\ninterval: 5ms\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	args := []string{"stoplinks", "--config", cfgPath, "--out-dir", outDir, "--out-name", "from_flag.json", "--quiet"}
	if err := newApp().Run(args); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "from_flag.json")); err != nil {
		t.Fatalf("flag should win over config: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "from_config.json")); !os.IsNotExist(err) {
		t.Fatalf("config out_name should be overridden, stat err=%v", err)
	}
}

func TestRun_NoMatchesExitsWithoutOutput(t *testing.T) {
	outDir := t.TempDir()
	args := []string{"stoplinks",
		"--file", writePage(t, `<html><body><a class="Other">x</a></body></html>`),
		"--out-dir", outDir,
		"--interval", "5ms",
		"--max-attempts", "3",
		"--quiet",
	}
	err := newApp().Run(args)
	var ec cli.ExitCoder
	if !errors.As(err, &ec) || ec.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Fatalf("expected no files written, got %d", len(entries))
	}
}

func TestRun_FileWithoutStopsFailsAfterOneCheck(t *testing.T) {
	outDir := t.TempDir()
	args := []string{"stoplinks",
		"--file", writePage(t, `<html><body><p>sin paradas</p></body></html>`),
		"--out-dir", outDir,
		"--interval", "5ms",
		"--quiet",
	}

	done := make(chan error, 1)
	go func() { done <- newApp().Run(args) }()
	select {
	case err := <-done:
		var ec cli.ExitCoder
		if !errors.As(err, &ec) || ec.ExitCode() != 1 {
			t.Fatalf("expected exit code 1, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("file source kept polling a document that cannot change")
	}
}

func TestRun_ClassNeedingEscapeStillMatches(t *testing.T) {
	outDir := t.TempDir()
	args := []string{"stoplinks",
		"--file", writePage(t, `<html><body><a class="1abc">Plaza Mayor</a></body></html>`),
		"--class", "1abc",
		"--out-dir", outDir,
		"--interval", "5ms",
		"--quiet",
	}
	if err := newApp().Run(args); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(outDir, "stop_links_content.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(b) != "[\n  \"Plaza Mayor\"\n]" {
		t.Fatalf("unexpected output %q", b)
	}
}

func TestRun_InvalidConfigIsUsageError(t *testing.T) {
	err := newApp().Run([]string{"stoplinks", "--quiet"})
	var ec cli.ExitCoder
	if !errors.As(err, &ec) || ec.ExitCode() != 1 {
		t.Fatalf("expected exit code 1 for missing input, got %v", err)
	}
}
