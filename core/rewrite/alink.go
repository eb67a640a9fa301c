package rewrite

import (
	"strconv"
	"strings"

	"chmweb/core/chmerr"
	"chmweb/core/model"
)

// MultiTopicClass is the marker CSS class applied to a link emitted to
// point at a multi-topic resolution page (spec.md §4.9, "tag the link
// with a marker class"; exact value pinned by spec.md §8 scenario 5).
const MultiTopicClass = "chmweb-multi-link"

// FindObjectByID returns the Embedded Object on a page whose id
// attribute equals id exactly (object ids are identifiers, not
// case-folded display text).
func FindObjectByID(objects []model.Object, id string) (model.Object, bool) {
	for _, o := range objects {
		if v, ok := o.Attrs.Get("id"); ok && v == id {
			return o, true
		}
	}
	return model.Object{}, false
}

// ResolveObjectClick implements "Object-mediated links
// (JavaScript:ID.Click())": find the page's embedded object named id
// and, if it is an ALink-command HTML-Help control, dereference it.
// Returns ok=false if id names no ALink-control object on the page.
func (r *Resolver) ResolveObjectClick(doc model.Path, archiveStem string, objects []model.Object, id string) (Result, string, bool) {
	obj, found := FindObjectByID(objects, id)
	if !found || !obj.IsHTMLHelpControl() {
		return Result{}, "", false
	}
	cmd, ok := obj.Command()
	if !ok || model.FoldCase(cmd) != "alink" {
		return Result{}, "", false
	}
	res, class := r.DereferenceALink(doc, archiveStem, obj)
	return res, class, true
}

// DereferenceALink implements "ALink object dereference" (spec.md
// §4.9): key = Item2 (display name), fallback = DefaultTopic.
func (r *Resolver) DereferenceALink(doc model.Path, archiveStem string, obj model.Object) (Result, string) {
	key, _ := obj.Param("Item2")
	fallback, _ := obj.Param("DefaultTopic")
	topics := r.TreeData.ALinks[key]
	return r.dereferenceTopics(doc, archiveStem, "_alinks", key, fallback, topics, r.TreeData.ALinkResolutionPages)
}

// DereferenceKLink mirrors DereferenceALink for a KLink (keyword link)
// lookup against a literal keyword string rather than an object.
func (r *Resolver) DereferenceKLink(doc model.Path, archiveStem, keyword, fallback string) (Result, string) {
	topics := r.TreeData.KLinks[keyword]
	return r.dereferenceTopics(doc, archiveStem, "_klinks", keyword, fallback, topics, r.TreeData.KLinkResolutionPages)
}

func (r *Resolver) dereferenceTopics(doc model.Path, archiveStem, dir, key, fallback string, topics []model.Topic, pageCache map[string]model.Path) (Result, string) {
	switch {
	case len(topics) == 1 && topics[0].Kind == model.TopicLocal:
		return r.finish(doc, topics[0].Filename, "", key), ""
	case len(topics) == 1 && topics[0].Kind == model.TopicExternal:
		return Result{Rewritten: topics[0].URL, Changed: true}, ""
	case len(topics) == 0:
		r.warn(chmerr.UnresolvedReference, doc, "alink/klink miss for "+key+", using fallback "+fallback)
		return r.Resolve(doc, archiveStem, fallback), ""
	default:
		path := r.ensureResolutionPage(dir, pageCache, key, topics)
		res := r.finish(doc, path, "", key)
		res.Target = "_top"
		return res, MultiTopicClass
	}
}

// ensureResolutionPage returns the cached resolution page path for key
// if one was already emitted for this exact multi-topic reference, or
// mints a fresh sanitised path and remembers it (spec.md §4.9,
// "repeated multi-topic references reuse one page"). Distinct keys that
// sanitise to the same name are disambiguated with a ".1", ".2", ...
// suffix.
func (r *Resolver) ensureResolutionPage(dir string, cache map[string]model.Path, key string, topics []model.Topic) model.Path {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := cache[key]; ok {
		return p
	}
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.DisplayName
	}
	base := SanitiseResolutionName(strings.Join(names, "_"))
	name := r.disambiguate(dir, base)
	path := model.Path(dir + "/" + name + ".html")
	cache[key] = path
	// Resolution pages aren't discovered by the Tree Scanner, so they'd
	// otherwise never appear in the Link Map finish() looks them up in
	// (spec.md §4.9 step 8) — register the page this call just minted.
	if r.LinkMap != nil {
		r.LinkMap[model.Path(model.FoldCase(string(path)))] = path
	}
	if r.resolutionPages == nil {
		r.resolutionPages = make(map[model.Path]ResolutionPageSpec)
	}
	r.resolutionPages[path] = ResolutionPageSpec{Topics: topics}
	return path
}

// resolveControl resolves an HTML-Help control object by its own Command
// parameter, for the case where the control itself (not a
// JavaScript:ID.Click() target elsewhere on the page) is the thing being
// replaced by the rewriter (spec.md §4.9, "Element rewrites"). KLink's
// keyword parameter isn't named in spec.md; Item1 is used by symmetry with
// ALink's Item2-as-display-name convention (see DESIGN.md).
func (r *Resolver) resolveControl(doc model.Path, archiveStem string, obj model.Object) (Result, string) {
	cmd, _ := obj.Command()
	switch model.FoldCase(cmd) {
	case "alink":
		return r.DereferenceALink(doc, archiveStem, obj)
	case "klink":
		keyword, _ := obj.Param("Item1")
		fallback, _ := obj.Param("DefaultTopic")
		return r.DereferenceKLink(doc, archiveStem, keyword, fallback)
	default:
		if topic, ok := obj.Param("Item1"); ok {
			return r.Resolve(doc, archiveStem, topic), ""
		}
		return Result{Rewritten: "#", Changed: true}, ""
	}
}

// disambiguate returns base, or base + "." + N for the smallest N >= 1
// that hasn't been used yet under dir.
func (r *Resolver) disambiguate(dir, base string) string {
	if r.resolutionNames == nil {
		r.resolutionNames = make(map[string]bool)
	}
	full := dir + "/" + base
	if !r.resolutionNames[full] {
		r.resolutionNames[full] = true
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "." + strconv.Itoa(n)
		full := dir + "/" + candidate
		if !r.resolutionNames[full] {
			r.resolutionNames[full] = true
			return candidate
		}
	}
}
