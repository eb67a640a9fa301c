// Package config resolves the chmweb CLI surface (spec.md §6): the
// three positional invocation shapes plus its flags, with an optional
// YAML sidecar for defaults that rarely change between runs.
//
// Grounded on the teacher's builder/config.Load: defaults, then a YAML
// overlay read from the working directory, then flag.NewFlagSet
// overrides that always win. Unlike the teacher's single-site config,
// every sidecar field here is an ambient convenience (worker count,
// cache location, extractor binary) — spec.md's CLI surface itself
// works unchanged with no sidecar present.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"chmweb/core/archive"
)

// Shape names which of spec.md §6's three positional layouts a run uses.
type Shape int

const (
	ShapeSingle Shape = iota
	ShapeMulti
	ShapeCollection
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapeMulti:
		return "multi"
	case ShapeCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Config is a fully-resolved run: which archives, which shape, and
// every ambient knob (spec.md §6 plus the expansion's --workers/
// --cache-dir/--extractor).
type Config struct {
	Shape    Shape
	Archives []string // .chm paths for Single/Multi; the lone .chw path for Collection
	OutDir   string

	GzipPages    bool
	WriteTOCJSON string // "" disables TOC JSON emission
	Workers      int
	CacheDir     string // "" disables the AK-Link decode cache
	Extractor    string
}

// sidecar is the optional chmweb.yaml overlay: ambient defaults only,
// never the positional archive/outdir arguments themselves.
type sidecar struct {
	Workers   int    `yaml:"workers"`
	CacheDir  string `yaml:"cacheDir"`
	GzipPages bool   `yaml:"gzipPages"`
	Extractor string `yaml:"extractor"`
}

// sidecarName is the optional YAML file Parse looks for in the current
// working directory.
const sidecarName = "chmweb.yaml"

// Parse resolves args (normally os.Args[1:]) into a Config: defaults,
// then a chmweb.yaml overlay if one is present, then flag overrides,
// which always win.
func Parse(args []string) (*Config, error) {
	cfg := &Config{
		Workers:   runtime.NumCPU(),
		Extractor: archive.DefaultExtractor,
	}

	if data, err := os.ReadFile(sidecarName); err == nil {
		var sc sidecar
		if uerr := yaml.Unmarshal(data, &sc); uerr != nil {
			return nil, fmt.Errorf("config: parse %s: %w", sidecarName, uerr)
		}
		if sc.Workers > 0 {
			cfg.Workers = sc.Workers
		}
		if sc.CacheDir != "" {
			cfg.CacheDir = sc.CacheDir
		}
		if sc.Extractor != "" {
			cfg.Extractor = sc.Extractor
		}
		cfg.GzipPages = sc.GzipPages
	}

	fs := flag.NewFlagSet("chmweb", flag.ContinueOnError)
	gzipPages := fs.Bool("gzip-pages", cfg.GzipPages, "gzip emitted HTML pages")
	tocJSON := fs.String("write-toc-json", "", "write the contents tree as JSON to PATH")
	workers := fs.Int("workers", cfg.Workers, "worker pool size")
	cacheDir := fs.String("cache-dir", cfg.CacheDir, "AK-Link decode cache directory (disabled if empty)")
	extractor := fs.String("extractor", cfg.Extractor, "external archive extractor binary")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.GzipPages = *gzipPages
	cfg.WriteTOCJSON = *tocJSON
	cfg.Workers = *workers
	cfg.CacheDir = *cacheDir
	cfg.Extractor = *extractor

	rest := fs.Args()
	if len(rest) < 2 {
		return nil, fmt.Errorf("config: expected <archive...> <outdir>, got %d positional argument(s)", len(rest))
	}
	cfg.OutDir = rest[len(rest)-1]
	cfg.Archives = rest[:len(rest)-1]

	switch {
	case len(cfg.Archives) == 1 && strings.EqualFold(filepath.Ext(cfg.Archives[0]), ".chw"):
		cfg.Shape = ShapeCollection
	case len(cfg.Archives) == 1:
		cfg.Shape = ShapeSingle
	default:
		cfg.Shape = ShapeMulti
	}
	return cfg, nil
}
