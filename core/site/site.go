package site

import (
	"io"
	"path"
	"runtime"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"golang.org/x/sync/errgroup"

	"chmweb/core/model"
	"chmweb/core/rewrite"
)

// Builder assembles the final output tree: rewritten page bodies,
// wrapper pages, contents (navigation) pages, and resolution pages
// (spec.md §4.9), minified and optionally gzipped on write.
//
// Grounded on the teacher's builder/renderer.Renderer: an afero.Fs
// destination and a shared minify.M instance configured the same way
// (builder/utils/minifier.go, builder/renderer/renderer.go).
type Builder struct {
	Dest     afero.Fs
	Resolver *rewrite.Resolver
	TreeData *model.TreeData
	Gzip     bool

	minifier *minify.M
}

// New returns a ready Builder. Minification always runs; gzip is
// optional, gated by gzipPages (spec.md §6, "--gzip-pages").
func New(dest afero.Fs, resolver *rewrite.Resolver, td *model.TreeData, gzipPages bool) *Builder {
	m := minify.New()
	m.Add("text/html", &html.Minifier{KeepEndTags: true})
	return &Builder{Dest: dest, Resolver: resolver, TreeData: td, Gzip: gzipPages, minifier: m}
}

// write minifies body as HTML and, if Gzip is set, compresses it before
// writing it to path (".gz" appended when gzip is on, per spec.md §6,
// "Persisted output layout").
func (b *Builder) write(p model.Path, body []byte) error {
	minified, err := b.minifier.Bytes("text/html", body)
	if err != nil {
		minified = body
	}

	outPath := string(p)
	if b.Gzip {
		outPath += ".gz"
	}
	if err := b.Dest.MkdirAll(path.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := b.Dest.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if b.Gzip {
		gz = gzip.NewWriter(f)
		w = gz
	}
	if _, err := w.Write(minified); err != nil {
		return err
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}

// RenderAll rewrites every discovered page and emits its wrapper, every
// contents/navigation page, every resolution page minted during
// resolution, and the root index (spec.md §4.9, "Persisted output
// layout"). rawContent supplies each page's original bytes, keyed by its
// root-relative path.
func (b *Builder) RenderAll(rawContent map[model.Path][]byte) error {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for p, rec := range b.TreeData.Pages {
		src, ok := rawContent[p]
		if !ok {
			continue
		}
		g.Go(func() error {
			rewritten := b.Resolver.Rewrite(rec, src)
			if err := b.write(contentPath(p), rewritten); err != nil {
				return err
			}
			return b.write(p, wrapperFor(b.TreeData.Tree, rec))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for p, html := range RenderAllTocPages(b.TreeData.Tree) {
		if err := b.write(p, html); err != nil {
			return err
		}
	}

	for p, html := range RenderResolutionPages(b.Resolver) {
		if err := b.write(p, html); err != nil {
			return err
		}
	}

	return b.writeIndex()
}

// writeIndex emits index.html as a wrapper for the first page reachable
// in the contents tree's document order (spec.md §6).
func (b *Builder) writeIndex() error {
	tree := b.TreeData.Tree
	var first model.NodeIndex
	found := false
	tree.Walk(tree.Root(), func(idx model.NodeIndex, n *model.Node) bool {
		if found {
			return false
		}
		if n.Kind == model.NodePage {
			first = idx
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil
	}
	rec, ok := b.TreeData.Page(tree.Node(first).Filename)
	if !ok {
		return nil
	}
	return b.write("index.html", wrapperFor(tree, rec))
}
