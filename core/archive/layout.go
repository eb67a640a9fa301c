package archive

import (
	"path/filepath"
	"strings"
)

// Stem returns an archive's case-preserving stem: its base filename with
// a trailing .chm/.chi/.chw extension removed.
func Stem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	switch strings.ToLower(ext) {
	case ".chm", ".chi", ".chw":
		return base[:len(base)-len(ext)]
	default:
		return base
	}
}

// ArchivePlan is one archive's place in a run: where its bytes live on
// disk (Source) and which output subdirectory its extracted pages and
// assets are canonicalised under (spec.md §4.8, "canonicalizeFilenames").
type ArchivePlan struct {
	Stem   string
	Source string
	Subdir string
}

// PlanSingle lays out the `<file.chm> <outdir>` shape: one archive, no
// subdirectory nesting (spec.md §6).
func PlanSingle(chmPath string) []ArchivePlan {
	return []ArchivePlan{{Stem: Stem(chmPath), Source: chmPath, Subdir: ""}}
}

// PlanMulti lays out the `<file1.chm> <file2.chm> ... <outdir>` shape:
// each archive gets its own output subdirectory named after its stem
// (spec.md §6).
func PlanMulti(chmPaths []string) []ArchivePlan {
	plans := make([]ArchivePlan, len(chmPaths))
	for i, p := range chmPaths {
		stem := Stem(p)
		plans[i] = ArchivePlan{Stem: stem, Source: p, Subdir: stem}
	}
	return plans
}

// PlanCollection lays out the `<file.chw> <outdir>` shape: the member
// archives are named by the sibling .col file's ArchivePlaceholder stems
// (spec.md §6, "layout driven by the sibling .col file"), each resolved
// against a .chm file of the same stem sitting next to chwPath and given
// its own output subdirectory, matching PlanMulti's convention so C8's
// canonicalizeFilenames treats both shapes identically.
func PlanCollection(chwPath string, memberStems []string) []ArchivePlan {
	dir := filepath.Dir(chwPath)
	plans := make([]ArchivePlan, len(memberStems))
	for i, stem := range memberStems {
		plans[i] = ArchivePlan{
			Stem:   stem,
			Source: filepath.Join(dir, stem+".chm"),
			Subdir: stem,
		}
	}
	return plans
}

// Canonical on-disk names of the CHM internal streams this system reads
// directly out of an extracted archive directory (spec.md §4.5). These
// are the literal stream names chmlib-family extractors write as files;
// the `$`-prefixed ones land one directory level down from their `/`
// separator.
const (
	StreamTopics            = "#TOPICS"
	StreamStrings           = "#STRINGS"
	StreamURLTbl            = "#URLTBL"
	StreamURLStr            = "#URLSTR"
	StreamTitleMap          = "$HHTitleMap"
	StreamAssociativeBTree  = "$WWAssociativeLinks/BTree"
	StreamKeywordBTree      = "$WWKeywordLinks/BTree"
)

// InternalStreamPath joins an archive's extraction directory with one of
// the Stream* names above.
func InternalStreamPath(extractedDir, streamName string) string {
	return filepath.Join(extractedDir, filepath.FromSlash(streamName))
}

// FindHHC locates the table-of-contents file in an extracted archive
// directory: the extractor reproduces the archive's original file tree
// verbatim, and every .chm this system targets ships exactly one .hhc at
// its root (spec.md §4.6 assumes one HHC buffer per archive stem).
func FindHHC(extractedDir string) (string, bool) {
	matches, err := filepath.Glob(filepath.Join(extractedDir, "*.hhc"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}
