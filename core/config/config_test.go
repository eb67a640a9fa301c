package config

import (
	"os"
	"testing"
)

// changeToTempDir switches into a fresh temp directory so Parse never
// picks up a real chmweb.yaml from the test runner's own working tree.
func changeToTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestParseSingleArchiveShape(t *testing.T) {
	changeToTempDir(t)
	cfg, err := Parse([]string{"book.chm", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Shape != ShapeSingle || len(cfg.Archives) != 1 || cfg.OutDir != "out" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseMultiArchiveShape(t *testing.T) {
	changeToTempDir(t)
	cfg, err := Parse([]string{"one.chm", "two.chm", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Shape != ShapeMulti || len(cfg.Archives) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseCollectionShape(t *testing.T) {
	changeToTempDir(t)
	cfg, err := Parse([]string{"suite.chw", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Shape != ShapeCollection || cfg.Archives[0] != "suite.chw" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseTooFewArgsErrors(t *testing.T) {
	changeToTempDir(t)
	if _, err := Parse([]string{"onlyoneargument"}); err == nil {
		t.Fatal("expected error for missing outdir")
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	changeToTempDir(t)
	cfg, err := Parse([]string{"book.chm", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Workers <= 0 {
		t.Fatalf("expected positive default worker count, got %d", cfg.Workers)
	}
	if cfg.Extractor == "" {
		t.Fatal("expected a default extractor binary name")
	}
	if cfg.CacheDir != "" {
		t.Fatalf("expected disk cache disabled by default, got %q", cfg.CacheDir)
	}
}

func TestYAMLSidecarSuppliesDefaults(t *testing.T) {
	changeToTempDir(t)
	yamlContent := "workers: 7\ncacheDir: /var/cache/chmweb\ngzipPages: true\nextractor: my_extract_tool\n"
	if err := os.WriteFile(sidecarName, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	cfg, err := Parse([]string{"book.chm", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Workers != 7 {
		t.Errorf("Workers = %d, want 7", cfg.Workers)
	}
	if cfg.CacheDir != "/var/cache/chmweb" {
		t.Errorf("CacheDir = %q, want /var/cache/chmweb", cfg.CacheDir)
	}
	if !cfg.GzipPages {
		t.Error("GzipPages should be true from sidecar")
	}
	if cfg.Extractor != "my_extract_tool" {
		t.Errorf("Extractor = %q, want my_extract_tool", cfg.Extractor)
	}
}

func TestCLIFlagsOverrideYAMLSidecar(t *testing.T) {
	changeToTempDir(t)
	yamlContent := "workers: 7\ngzipPages: true\n"
	if err := os.WriteFile(sidecarName, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	cfg, err := Parse([]string{"-workers", "3", "-gzip-pages=false", "book.chm", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3 (CLI override)", cfg.Workers)
	}
	if cfg.GzipPages {
		t.Error("GzipPages should be false (CLI override)")
	}
}

func TestWriteTOCJSONFlag(t *testing.T) {
	changeToTempDir(t)
	cfg, err := Parse([]string{"-write-toc-json", "toc.json", "book.chm", "out"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.WriteTOCJSON != "toc.json" {
		t.Errorf("WriteTOCJSON = %q, want toc.json", cfg.WriteTOCJSON)
	}
}
