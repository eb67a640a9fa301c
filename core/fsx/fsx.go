// Package fsx implements the Filesystem Cache (C1, spec.md §4.1): a
// process-lifetime memoised view of an afero.Fs root, plus
// resolve_mixed_case (spec.md §4.2), which composes the cache with
// core/pathalg.
//
// Grounded on the teacher's builder/utils (afero.Fs-driven tree walks in
// CopyDirVFS/BuildAssetsEsbuild): chmweb drives the same afero.Fs
// abstraction so production runs use afero.NewOsFs() and tests use
// afero.NewMemMapFs() without touching a real disk.
package fsx

import (
	"sync"

	"github.com/spf13/afero"

	"chmweb/core/chmerr"
	"chmweb/core/model"
)

// Cache memoises existence/directory/children queries against an
// afero.Fs root. Results are kept indefinitely; call Reset if the
// underlying filesystem changes (spec.md §4.1). Used only from the
// parent control thread — never shared with workers (spec.md §5).
type Cache struct {
	fs   afero.Fs
	root string
	warn chmerr.WarningSink

	mu         sync.Mutex
	existsMemo map[string]bool
	isDirMemo  map[string]bool
	childMemo  map[string][]string
	warnedDirs map[string]bool
}

// New returns a Cache rooted at root within fs.
func New(fs afero.Fs, root string, warn chmerr.WarningSink) *Cache {
	return &Cache{
		fs:         fs,
		root:       root,
		warn:       warn,
		existsMemo: make(map[string]bool),
		isDirMemo:  make(map[string]bool),
		childMemo:  make(map[string][]string),
		warnedDirs: make(map[string]bool),
	}
}

// Reset clears all memoised results.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.existsMemo = make(map[string]bool)
	c.isDirMemo = make(map[string]bool)
	c.childMemo = make(map[string][]string)
	c.warnedDirs = make(map[string]bool)
}

func (c *Cache) abs(p model.Path) string {
	if c.root == "" {
		return string(p)
	}
	if p == "" {
		return c.root
	}
	return c.root + "/" + string(p)
}

// Exists reports whether p (root-relative) exists.
func (c *Cache) Exists(p model.Path) bool {
	c.mu.Lock()
	if v, ok := c.existsMemo[string(p)]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	_, err := c.fs.Stat(c.abs(p))
	exists := err == nil

	c.mu.Lock()
	c.existsMemo[string(p)] = exists
	c.mu.Unlock()
	return exists
}

// IsDir reports whether p (root-relative) is a directory.
func (c *Cache) IsDir(p model.Path) bool {
	c.mu.Lock()
	if v, ok := c.isDirMemo[string(p)]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	info, err := c.fs.Stat(c.abs(p))
	isDir := err == nil && info.IsDir()

	c.mu.Lock()
	c.isDirMemo[string(p)] = isDir
	c.mu.Unlock()
	return isDir
}

// Children lists dir's entries, excluding "." and "..". Returns an empty
// list for a non-directory or an inaccessible directory, raising a
// warning the first time that directory is found inaccessible
// (spec.md §4.1).
func (c *Cache) Children(dir model.Path) []string {
	c.mu.Lock()
	if v, ok := c.childMemo[string(dir)]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	entries, err := afero.ReadDir(c.fs, c.abs(dir))
	var names []string
	if err != nil {
		c.mu.Lock()
		alreadyWarned := c.warnedDirs[string(dir)]
		c.warnedDirs[string(dir)] = true
		c.mu.Unlock()
		if !alreadyWarned && c.warn != nil {
			c.warn.Warn(&chmerr.Warning{
				Kind: chmerr.FilesystemAccessDenied,
				Msg:  "cannot list directory " + string(dir) + ": " + err.Error(),
			})
		}
		names = []string{}
	} else {
		names = make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Name() == "." || e.Name() == ".." {
				continue
			}
			names = append(names, e.Name())
		}
	}

	c.mu.Lock()
	c.childMemo[string(dir)] = names
	c.mu.Unlock()
	return names
}

// CaseInsensitiveChildren returns every entry of dir whose name compares
// equal to name under Unicode case folding.
func (c *Cache) CaseInsensitiveChildren(dir model.Path, name string) []string {
	folded := model.FoldCase(name)
	var out []string
	for _, entry := range c.Children(dir) {
		if model.FoldCase(entry) == folded {
			out = append(out, entry)
		}
	}
	return out // preserves filesystem enumeration order for resolve_mixed_case's tie-break
}
