package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cryptoresearch/labsite/internal/site"
)

func TestLoadConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STRICT_REFERENCES", "true")
	contentDir, outputDir, lenient = filepath.Join(dir, "content"), filepath.Join(dir, "out"), true
	t.Cleanup(func() { contentDir, outputDir, lenient = "", "", false })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ContentDir != filepath.Join(dir, "content") || cfg.OutputDir != filepath.Join(dir, "out") {
		t.Errorf("directory flags not applied: %+v", cfg)
	}
	if cfg.StrictReferences {
		t.Error("--lenient should disable strict references")
	}
}

func TestPrintReport(t *testing.T) {
	report := &site.Report{
		Pages: []string{"/", "/blog/whisk"},
		Diagnostics: []site.Diagnostic{
			{Page: "/blog/whisk", Severity: site.SeverityError, Message: `unresolved section reference "x"`},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	want := "error: /blog/whisk: unresolved section reference \"x\"\n2 pages, 1 errors, 1 diagnostics\n"
	if buf.String() != want {
		t.Errorf("unexpected text report:\n%s", buf.String())
	}

	jsonReport = true
	t.Cleanup(func() { jsonReport = false })
	buf.Reset()
	printReport(&buf, report)
	if !strings.Contains(buf.String(), `"severity": "error"`) {
		t.Errorf("unexpected json report:\n%s", buf.String())
	}
}
