package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"

	"chmweb/core/aklink"
	"chmweb/core/archive"
	"chmweb/core/chmerr"
	"chmweb/core/config"
	"chmweb/core/contents"
	"chmweb/core/diskcache"
	"chmweb/core/logging"
	"chmweb/core/model"
	"chmweb/core/rewrite"
	"chmweb/core/site"
	"chmweb/core/treescan"
	"chmweb/core/workerpool"
)

// run drives the whole pipeline (spec.md §2, "Data flow") for one
// invocation: unpack, build the skeleton tree, load the AK-Link Table,
// discover every reachable page, resolve references, and emit the
// output site.
func run(cfg *config.Config, logger *logging.Logger) error {
	ctx := context.Background()

	staging, err := os.MkdirTemp("", "chmweb-extract-")
	if err != nil {
		return fmt.Errorf("chmweb: create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	plans, tree, chwExtractDir, err := planArchives(ctx, cfg, staging, logger)
	if err != nil {
		return err
	}

	registry := model.NewArchiveRegistry()
	extractDirByStem := make(map[string]string, len(plans))
	for _, p := range plans {
		if err := registry.Register(p.Stem, p.Subdir); err != nil {
			return chmerr.NewFatal(chmerr.DuplicateArchiveStem, err)
		}
		extractDirByStem[model.FoldCase(p.Stem)] = filepath.Join(staging, p.Subdir)
	}

	td := model.NewTreeData(registry, tree)

	logger.Info(logging.PhaseIndex, "loading AK-Link tables for %d archive(s)", len(plans))
	chwPath := ""
	if cfg.Shape == config.ShapeCollection {
		chwPath = cfg.Archives[0]
	}
	alinks, klinks, err := loadKeywordMaps(cfg, plans, extractDirByStem, chwPath, chwExtractDir)
	if err != nil {
		return err
	}
	td.ALinks, td.KLinks = alinks, klinks

	seeds, err := collectSeeds(plans, extractDirByStem)
	if err != nil {
		return err
	}
	// Every local topic the keyword maps name is a discovery root too.
	for _, m := range []model.KeywordMap{alinks, klinks} {
		for _, topics := range m {
			for _, t := range topics {
				if t.Kind == model.TopicLocal && t.Filename != "" {
					base, _ := model.SplitAnchor(string(t.Filename))
					seeds = append(seeds, model.Path(base))
				}
			}
		}
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("chmweb: locate own executable: %w", err)
	}
	pool, err := workerpool.New(ctx, cfg.Workers, exePath, nil, nil)
	if err != nil {
		return fmt.Errorf("chmweb: start worker pool: %w", err)
	}
	pool.Start()
	defer pool.Stop()

	rawContent := make(map[model.Path][]byte)
	loadHHC := func(stem string) ([]byte, error) {
		dir, ok := extractDirByStem[model.FoldCase(stem)]
		if !ok {
			return nil, fmt.Errorf("chmweb: no extraction directory registered for archive %q", stem)
		}
		hhcPath, ok := archive.FindHHC(dir)
		if !ok {
			return nil, fmt.Errorf("chmweb: no .hhc found for archive %q", stem)
		}
		return os.ReadFile(hhcPath)
	}
	scan := func(stem string, path model.Path) (model.PageRecord, error) {
		src, err := os.ReadFile(filepath.Join(staging, string(path)))
		if err != nil {
			return model.PageRecord{}, err
		}
		rawContent[path] = src
		payload, err := msgpack.Marshal(scanPageRequest{ArchiveStem: stem, Path: string(path), Src: src})
		if err != nil {
			return model.PageRecord{}, err
		}
		result, err := pool.Submit(workerpool.Request{Op: opScanPage, Payload: payload}, logger)
		if err != nil {
			return model.PageRecord{}, err
		}
		var rec model.PageRecord
		if err := msgpack.Unmarshal(result, &rec); err != nil {
			return model.PageRecord{}, fmt.Errorf("chmweb: decode page record: %w", err)
		}
		return rec, nil
	}

	logger.Info(logging.PhaseDiscover, "scanning from %d seed(s)", len(seeds))
	assets, err := treescan.Discover(td, seeds, loadHHC, scan)
	if err != nil {
		return err
	}
	linkMap := treescan.BuildLinkMap(td, assets)

	resolver := &rewrite.Resolver{Registry: registry, LinkMap: linkMap, TreeData: td, Warn: logger}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("chmweb: create output directory: %w", err)
	}
	dest := afero.NewBasePathFs(afero.NewOsFs(), cfg.OutDir)

	logger.Info(logging.PhaseEmit, "rewriting %d page(s)", len(td.Pages))
	builder := site.New(dest, resolver, td, cfg.GzipPages)
	if err := builder.RenderAll(rawContent); err != nil {
		return fmt.Errorf("chmweb: emit site: %w", err)
	}

	if cfg.WriteTOCJSON != "" {
		if err := writeTOCJSON(td.Tree, cfg.WriteTOCJSON); err != nil {
			return fmt.Errorf("chmweb: write toc json: %w", err)
		}
	}
	return nil
}

// planArchives extracts every archive a run needs and builds the
// skeleton contents tree (one ArchivePlaceholder per archive for the
// Single/Multi shapes, or the collection's own .col-derived tree for
// the Collection shape). It returns the per-archive plans, the skeleton
// tree, and (Collection shape only) the .chw's own extraction
// directory, which carries the aggregate AK-Link B-trees.
func planArchives(ctx context.Context, cfg *config.Config, staging string, logger *logging.Logger) ([]archive.ArchivePlan, *model.Tree, string, error) {
	switch cfg.Shape {
	case config.ShapeSingle:
		plans := archive.PlanSingle(cfg.Archives[0])
		tree := model.NewTree()
		tree.AddChild(tree.Root(), model.Node{Kind: model.NodeArchivePlaceholder, ArchiveStem: model.FoldCase(plans[0].Stem)})
		if err := extractAll(ctx, cfg.Extractor, plans, staging, logger); err != nil {
			return nil, nil, "", err
		}
		return plans, tree, "", nil

	case config.ShapeMulti:
		plans := archive.PlanMulti(cfg.Archives)
		tree := model.NewTree()
		for _, p := range plans {
			tree.AddChild(tree.Root(), model.Node{Kind: model.NodeArchivePlaceholder, ArchiveStem: model.FoldCase(p.Stem)})
		}
		if err := extractAll(ctx, cfg.Extractor, plans, staging, logger); err != nil {
			return nil, nil, "", err
		}
		return plans, tree, "", nil

	case config.ShapeCollection:
		chwPath := cfg.Archives[0]
		colPath := filepath.Join(filepath.Dir(chwPath), archive.Stem(chwPath)+".col")
		colBytes, err := os.ReadFile(colPath)
		if err != nil {
			return nil, nil, "", fmt.Errorf("chmweb: read collection file %s: %w", colPath, err)
		}
		tree, err := contents.ParseCOL(colBytes)
		if err != nil {
			return nil, nil, "", fmt.Errorf("chmweb: parse collection file %s: %w", colPath, err)
		}

		var stems []string
		for _, c := range tree.Node(tree.Root()).Children {
			n := tree.Node(c)
			if n.Kind == model.NodeArchivePlaceholder {
				stems = append(stems, n.ArchiveStem)
			}
		}
		plans := archive.PlanCollection(chwPath, stems)
		if err := extractAll(ctx, cfg.Extractor, plans, staging, logger); err != nil {
			return nil, nil, "", err
		}

		chwExtractDir := filepath.Join(staging, "_chw")
		if err := archive.Extract(ctx, cfg.Extractor, chwPath, chwExtractDir); err != nil {
			return nil, nil, "", err
		}
		return plans, tree, chwExtractDir, nil
	}
	return nil, nil, "", fmt.Errorf("chmweb: unknown invocation shape %v", cfg.Shape)
}

func extractAll(ctx context.Context, extractorPath string, plans []archive.ArchivePlan, staging string, logger *logging.Logger) error {
	for _, p := range plans {
		dir := filepath.Join(staging, p.Subdir)
		logger.Info(logging.PhaseUnpack, "extracting %s", p.Source)
		if err := archive.Extract(ctx, extractorPath, p.Source, dir); err != nil {
			return err
		}
	}
	return nil
}

// collectSeeds parses every archive's own HHC a first time purely to
// learn every page it lists, at any depth (treescan.Discover will parse it
// again, for real, once it expands the placeholder it's seeded from).
func collectSeeds(plans []archive.ArchivePlan, extractDirByStem map[string]string) ([]model.Path, error) {
	var seeds []model.Path
	for _, p := range plans {
		dir := extractDirByStem[model.FoldCase(p.Stem)]
		hhcPath, ok := archive.FindHHC(dir)
		if !ok {
			continue
		}
		buf, err := os.ReadFile(hhcPath)
		if err != nil {
			return nil, fmt.Errorf("chmweb: read %s: %w", hhcPath, err)
		}
		hhcTree, err := contents.ParseHHC(buf)
		if err != nil {
			return nil, fmt.Errorf("chmweb: parse %s: %w", hhcPath, err)
		}
		hhcTree.Walk(hhcTree.Root(), func(idx model.NodeIndex, n *model.Node) bool {
			if n.Kind == model.NodePage {
				seeds = append(seeds, model.JoinPath(p.Subdir, string(n.Filename)))
			}
			return true
		})
	}
	return seeds, nil
}

func loadArchiveTables(extractDir, subdir string) (aklink.ArchiveTables, error) {
	read := func(stream string) ([]byte, error) {
		return os.ReadFile(archive.InternalStreamPath(extractDir, stream))
	}
	topics, err := read(archive.StreamTopics)
	if err != nil {
		return aklink.ArchiveTables{}, err
	}
	strs, err := read(archive.StreamStrings)
	if err != nil {
		return aklink.ArchiveTables{}, err
	}
	urltbl, err := read(archive.StreamURLTbl)
	if err != nil {
		return aklink.ArchiveTables{}, err
	}
	urlstr, err := read(archive.StreamURLStr)
	if err != nil {
		return aklink.ArchiveTables{}, err
	}
	return aklink.ArchiveTables{Subdir: subdir, Topics: topics, Strings: strs, URLTbl: urltbl, URLStr: urlstr}, nil
}

func readOptionalStream(extractDir, stream string) []byte {
	data, err := os.ReadFile(archive.InternalStreamPath(extractDir, stream))
	if err != nil {
		return nil
	}
	return data
}

func mergeKeywordMaps(dst, src model.KeywordMap) {
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
}

// loadKeywordMaps decodes the AK-Link Table for every archive in plans
// (spec.md §4.5) and merges the result into one pair of run-wide keyword
// maps, consulting the disk cache first when cfg.CacheDir is set.
func loadKeywordMaps(cfg *config.Config, plans []archive.ArchivePlan, extractDirByStem map[string]string, chwPath, chwExtractDir string) (model.KeywordMap, model.KeywordMap, error) {
	alinks := make(model.KeywordMap)
	klinks := make(model.KeywordMap)

	var cache *diskcache.Cache
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("chmweb: create cache directory: %w", err)
		}
		c, err := diskcache.Open(filepath.Join(cfg.CacheDir, "aklink.db"))
		if err != nil {
			return nil, nil, err
		}
		defer c.Close()
		cache = c
	}

	decodeAndCache := func(sourcePath string, decode func() (model.KeywordMap, model.KeywordMap, error)) error {
		var key []byte
		if cache != nil {
			if info, err := os.Stat(sourcePath); err == nil {
				key = diskcache.Key(sourcePath, info.Size(), info.ModTime())
				if a, k, ok := cache.Get(key); ok {
					mergeKeywordMaps(alinks, a)
					mergeKeywordMaps(klinks, k)
					return nil
				}
			}
		}
		a, k, err := decode()
		if err != nil {
			return err
		}
		mergeKeywordMaps(alinks, a)
		mergeKeywordMaps(klinks, k)
		if cache != nil && key != nil {
			_ = cache.Put(key, a, k)
		}
		return nil
	}

	if chwExtractDir != "" {
		// Collection shape: one aggregate B-tree spans every member
		// archive, ordinal-addressed via $HHTitleMap order (spec.md §4.5,
		// "Multi-archive (chw) layout").
		titleBuf, err := os.ReadFile(archive.InternalStreamPath(chwExtractDir, archive.StreamTitleMap))
		if err != nil {
			return nil, nil, fmt.Errorf("chmweb: read %s: %w", archive.StreamTitleMap, err)
		}
		entries, err := aklink.DecodeTitleMap(titleBuf)
		if err != nil {
			return nil, nil, err
		}
		byOrdinal := make(map[int]aklink.ArchiveTables, len(entries))
		for i, e := range entries {
			stem := model.FoldCase(e.Stem)
			dir, ok := extractDirByStem[stem]
			if !ok {
				continue
			}
			subdir := ""
			for _, p := range plans {
				if model.FoldCase(p.Stem) == stem {
					subdir = p.Subdir
					break
				}
			}
			at, err := loadArchiveTables(dir, subdir)
			if err != nil {
				return nil, nil, err
			}
			byOrdinal[i+1] = at
		}

		err = decodeAndCache(chwPath, func() (model.KeywordMap, model.KeywordMap, error) {
			table := aklink.NewMultiArchiveTable(byOrdinal)
			alinkBuf := readOptionalStream(chwExtractDir, archive.StreamAssociativeBTree)
			klinkBuf := readOptionalStream(chwExtractDir, archive.StreamKeywordBTree)
			if err := table.LoadKeywordMaps(alinkBuf, klinkBuf, func(error) {}); err != nil {
				return nil, nil, err
			}
			return table.ALinks, table.KLinks, nil
		})
		return alinks, klinks, err
	}

	for _, p := range plans {
		dir := extractDirByStem[model.FoldCase(p.Stem)]
		err := decodeAndCache(p.Source, func() (model.KeywordMap, model.KeywordMap, error) {
			at, err := loadArchiveTables(dir, p.Subdir)
			if err != nil {
				return nil, nil, err
			}
			table := aklink.NewSingleArchiveTable(at)
			alinkBuf := readOptionalStream(dir, archive.StreamAssociativeBTree)
			klinkBuf := readOptionalStream(dir, archive.StreamKeywordBTree)
			if err := table.LoadKeywordMaps(alinkBuf, klinkBuf, func(error) {}); err != nil {
				return nil, nil, err
			}
			return table.ALinks, table.KLinks, nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return alinks, klinks, nil
}

// tocNode is one entry of the --write-toc-json output (spec.md §6): an
// array mirroring the contents tree, page paths canonicalised and
// folders/archive mount points carrying only a title and children.
type tocNode struct {
	Title    string    `json:"title"`
	Path     string    `json:"path,omitempty"`
	Children []tocNode `json:"children,omitempty"`
}

func buildTOCNode(t *model.Tree, idx model.NodeIndex) tocNode {
	n := t.Node(idx)
	out := tocNode{Title: n.Title}
	if n.Kind == model.NodePage {
		out.Path = string(n.Filename)
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, buildTOCNode(t, c))
	}
	return out
}

func writeTOCJSON(t *model.Tree, path string) error {
	root := buildTOCNode(t, t.Root())
	data, err := json.MarshalIndent(root.Children, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
