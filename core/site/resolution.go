package site

import (
	"bytes"
	"html/template"

	"chmweb/core/model"
	"chmweb/core/pathalg"
	"chmweb/core/rewrite"
)

var resolutionPageTemplate = template.Must(template.New("resolution").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<ul>
{{range .Links}}<li><a href="{{.Href}}" target="_top">{{.Title}}</a></li>
{{end}}</ul>
</body>
</html>
`))

type resolutionLink struct{ Href, Title string }

// renderResolutionPage lists spec's topics as plain hyperlinks
// (spec.md §4.9, "Resolution pages... lists the topics as hyperlinks").
// Resolution pages stand alone rather than living inside a frame, so
// every link here targets _top, matching how other pages link into one.
func renderResolutionPage(path model.Path, spec rewrite.ResolutionPageSpec) []byte {
	var links []resolutionLink
	for _, t := range spec.Topics {
		title := t.DisplayName
		switch t.Kind {
		case model.TopicLocal:
			if title == "" {
				title = string(t.Filename)
			}
			links = append(links, resolutionLink{Href: pathalg.RootToDoc(t.Filename, path), Title: title})
		case model.TopicExternal:
			if title == "" {
				title = t.URL
			}
			links = append(links, resolutionLink{Href: t.URL, Title: title})
		}
	}

	data := struct {
		Title string
		Links []resolutionLink
	}{Title: "Topics Found", Links: links}

	var buf bytes.Buffer
	if err := resolutionPageTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// RenderResolutionPages renders every resolution page r has minted so
// far (spec.md §4.9, ALink/KLink multi-topic dereference).
func RenderResolutionPages(r *rewrite.Resolver) map[model.Path][]byte {
	out := make(map[model.Path][]byte)
	for path, spec := range r.ResolutionPages() {
		out[path] = renderResolutionPage(path, spec)
	}
	return out
}
