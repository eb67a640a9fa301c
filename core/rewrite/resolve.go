package rewrite

import (
	"regexp"
	"strings"
	"sync"

	"chmweb/core/chmerr"
	"chmweb/core/model"
	"chmweb/core/pathalg"
)

var (
	schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*:`)
	itsRe    = regexp.MustCompile(`(?i)^(?:ms-its:|mk:@MSITStore:)([^:]+)::(.*)$`)
)

// Resolver carries the read-only state reference resolution needs:
// the Archive Registry (for scheme-tagged and absolute references), the
// Link Map (canonical casing), and discovered Page Records (to decide
// _top targeting and .content rewriting).
type Resolver struct {
	Registry *model.ArchiveRegistry
	LinkMap  model.LinkMap
	TreeData *model.TreeData
	Warn     chmerr.WarningSink

	// mu guards resolutionNames/resolutionPages and the LinkMap (written when
	// a resolution page is minted, read by finish): site.Builder fans page
	// rewriting out across a runtime.NumCPU()-bounded goroutine group (see
	// core/site.RenderAll), and minting a resolution page is the one Resolver
	// state change Rewrite can trigger concurrently from two different pages.
	mu sync.Mutex

	// resolutionNames disambiguates resolution-page filenames that
	// sanitise to the same name (spec.md §4.9, "Resolution pages").
	resolutionNames map[string]bool

	// resolutionPages records the topic list behind every resolution page
	// this Resolver has minted, keyed by its output path, so the page
	// emitter can render each one's body after the fact without having to
	// re-run dereferenceTopics.
	resolutionPages map[model.Path]ResolutionPageSpec
}

// ResolutionPageSpec is the topic list a minted resolution page lists
// (spec.md §4.9, "Resolution pages").
type ResolutionPageSpec struct {
	Topics []model.Topic
}

// ResolutionPages returns every resolution page minted so far, keyed by
// its output path.
func (r *Resolver) ResolutionPages() map[model.Path]ResolutionPageSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolutionPages
}

// Result is the outcome of resolving one reference.
type Result struct {
	Rewritten string // the (possibly unchanged) reference to splice in
	Target    string // "" = leave target alone; "_top" = navigate top
	Changed   bool
}

func (r *Resolver) warn(kind chmerr.Kind, page model.Path, msg string) {
	if r.Warn != nil {
		r.Warn.Warn(&chmerr.Warning{Kind: kind, Page: string(page), Msg: msg})
	}
}

// Resolve implements the ten-step reference resolution algorithm of
// spec.md §4.9 for ref, a raw href/src string as it appeared on doc
// (root-relative), whose owning archive is archiveStem.
func (r *Resolver) Resolve(doc model.Path, archiveStem string, ref string) Result {
	// Step 1: in-page anchor.
	if strings.HasPrefix(ref, "#") {
		return Result{Rewritten: ref}
	}

	// Step 2: ITS/MSITStore scheme.
	if m := itsRe.FindStringSubmatch(ref); m != nil {
		name, url := m[1], m[2]
		if subdir, ok := r.Registry.SubdirByFilename(name); ok {
			base, anchor := model.SplitAnchor(url)
			canonical := model.JoinPath(subdir, strings.TrimPrefix(base, "/"))
			return r.finish(doc, canonical, anchor, ref)
		}
		// Unknown archive: warn and treat as external.
		r.warn(chmerr.UnknownSchemeArchive, doc, ref)
		return Result{Rewritten: ref}
	}

	// Step 3: any other scheme-tagged reference is left untouched.
	if schemeRe.MatchString(ref) {
		return Result{Rewritten: ref}
	}

	// Step 4: split off the anchor.
	base, anchor := model.SplitAnchor(ref)

	var canonical model.Path
	if strings.HasPrefix(base, "/") {
		// Step 5: absolute, resolved against the owning archive's subdir.
		// Step 7 still applies here: run the stripped path through the same
		// C2 doc_to_root escape check as the document-relative branch below,
		// seeded at a virtual document sitting at the subdir's root, so
		// "../"-popping and the escapes-root check behave identically for
		// both branches.
		subdir, _ := r.Registry.SubdirByStem(archiveStem)
		virtualDoc := model.JoinPath(subdir, "_")
		target, ok := pathalg.DocToRoot(strings.TrimPrefix(base, "/"), virtualDoc)
		if !ok {
			r.warn(chmerr.ReferenceEscapesRoot, doc, ref)
			return Result{Rewritten: "#", Changed: true}
		}
		canonical = target
	} else {
		// Step 6: document-relative.
		target, ok := pathalg.DocToRoot(base, doc)
		if !ok {
			// Step 7: escapes the root.
			r.warn(chmerr.ReferenceEscapesRoot, doc, ref)
			return Result{Rewritten: "#", Changed: true}
		}
		canonical = target
	}

	return r.finish(doc, canonical, anchor, ref)
}

// finish implements steps 8-10: Link Map lookup, _top/.content
// targeting, and converting the canonical root-relative path back to a
// doc-relative reference.
func (r *Resolver) finish(doc model.Path, canonical model.Path, anchor string, original string) Result {
	r.mu.Lock()
	resolved, ok := r.LinkMap.Resolve(canonical)
	r.mu.Unlock()
	if !ok {
		// Step 8: broken reference.
		r.warn(chmerr.UnresolvedReference, doc, original)
		return Result{Rewritten: "#", Changed: true}
	}

	target := ""
	if rec, isPage := r.TreeData.Page(resolved); isPage {
		if rec.HasContentsTreePath {
			// Step 9a: known page, in the contents tree.
			target = "_top"
		} else {
			// Step 9b: known page, not in the contents tree.
			resolved = resolved.WithExt(".content" + resolved.Ext())
		}
	}

	// Step 10: reattach anchor, convert back to doc-relative.
	rel := pathalg.RootToDoc(resolved, doc)
	rewritten := rel + anchor
	return Result{Rewritten: rewritten, Target: target, Changed: rewritten != original}
}
