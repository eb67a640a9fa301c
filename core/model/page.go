package model

// Attr is an ordered name/value pair. Attribute lists are kept as slices,
// not maps, so that rewritten markup re-emits attributes in their
// original order and original capitalisation (spec.md §9, "Ordered,
// case-insensitive attribute lookups").
type Attr struct {
	Name  string
	Value string
}

// AttrList is an ordered, case-insensitively searchable attribute list.
type AttrList []Attr

// Get returns the value of the first attribute matching name
// case-insensitively, and whether it was found.
func (a AttrList) Get(name string) (string, bool) {
	for _, at := range a {
		if FoldCase(at.Name) == FoldCase(name) {
			return at.Value, true
		}
	}
	return "", false
}

// Object is an embedded <object>...</object> span (spec.md §3, Embedded
// Object).
type Object struct {
	Attrs      AttrList
	Params     AttrList // <param name=... value=...> children, in order
	StartByte  int
	StartLine  int
	TotalBytes int // start tag through matching </object>, inclusive
}

// HTMLHelpCLSID is the class identifier that marks an <object> as the
// HTML-Help ActiveX control.
const HTMLHelpCLSID = "{adb880a6-d8ff-11cf-9377-00aa003b7a11}"

// IsHTMLHelpControl reports whether o is classified as an HTML-Help
// control: type=application/x-oleobject and classid equal to the known
// CLSID, both compared case-insensitively (spec.md §3).
func (o Object) IsHTMLHelpControl() bool {
	typ, _ := o.Attrs.Get("type")
	classid, _ := o.Attrs.Get("classid")
	return FoldCase(typ) == "application/x-oleobject" && FoldCase(classid) == FoldCase(HTMLHelpCLSID)
}

// Command returns the control's "Command" <param> value, if present.
func (o Object) Command() (string, bool) { return o.Params.Get("Command") }

// Param returns the value of the named <param>, if present.
func (o Object) Param(name string) (string, bool) { return o.Params.Get(name) }

// PageRecord is the extracted record of one HTML page (spec.md §3).
type PageRecord struct {
	ArchiveStem string
	Path        Path // root-relative
	ContentsTreePath []int // optional; nil if not attached to the contents tree
	HasContentsTreePath bool
	Title       string

	AssetLinks []string // raw href/src strings as they appeared in source
	PageLinks  []string

	Objects []Object
}
