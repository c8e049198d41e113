// Package fileset models a template tree as an in-memory map from
// slash-separated relative paths to file contents.
package fileset

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/mifan-labs/mifan/internal/output"
)

// DefaultMode is used for files loaded without a permission.
const DefaultMode os.FileMode = 0o644

// ignored names are never loaded from a template tree.
var ignored = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// File is a single entry in the set.
type File struct {
	Contents []byte
	Mode     os.FileMode
}

// FileSet maps relative paths to files.
type FileSet struct {
	files map[string]*File
}

// New returns an empty set.
func New() *FileSet {
	return &FileSet{files: make(map[string]*File)}
}

// Load reads every regular file under the root of fsys. Paths matching any
// exclude glob are skipped; a matching directory is skipped entirely.
func Load(fsys billy.Filesystem, exclude ...string) (*FileSet, error) {
	set := New()
	err := util.Walk(fsys, "/", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := key(p)
		if rel == "" {
			return nil
		}
		if ignored[info.Name()] || Excluded(rel, exclude) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		data, err := util.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		set.files[rel] = &File{Contents: data, Mode: info.Mode().Perm()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Get returns the file at p.
func (s *FileSet) Get(p string) (*File, bool) {
	f, ok := s.files[p]
	return f, ok
}

// Put stores f at p, replacing any existing entry.
func (s *FileSet) Put(p string, f *File) {
	if f.Mode == 0 {
		f.Mode = DefaultMode
	}
	s.files[clean(p)] = f
}

// Delete removes p. Removing an absent path is a no-op.
func (s *FileSet) Delete(p string) {
	delete(s.files, p)
}

// Rename moves the entry at from to to.
func (s *FileSet) Rename(from, to string) error {
	f, ok := s.files[from]
	if !ok {
		return fmt.Errorf("rename %s: %w", from, fs.ErrNotExist)
	}
	delete(s.files, from)
	s.files[clean(to)] = f
	return nil
}

// Paths returns every path in lexical order.
func (s *FileSet) Paths() []string {
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of files.
func (s *FileSet) Len() int { return len(s.files) }

// Glob returns the sorted paths matching pattern.
func (s *FileSet) Glob(pattern string) []string {
	var out []string
	for _, p := range s.Paths() {
		if Match(pattern, p) {
			out = append(out, p)
		}
	}
	return out
}

// Write materializes the set under the root of fsys, creating parent
// directories as needed. Existing files outside the set are left alone.
func (s *FileSet) Write(fsys billy.Filesystem) error {
	for _, p := range s.Paths() {
		f := s.files[p]
		mode := f.Mode
		if mode == 0 {
			mode = DefaultMode
		}
		name := "/" + p
		if dir := path.Dir(name); dir != "/" {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		if err := util.WriteFile(fsys, name, f.Contents, mode); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
		fixMode(fsys, name, mode)
	}
	return nil
}

// fixMode corrects the permission of a file that already existed with a
// different one. Filesystems without chmod support keep what they have.
func fixMode(fsys billy.Filesystem, name string, mode os.FileMode) {
	info, err := fsys.Stat(name)
	if err != nil || info.Mode().Perm() == mode.Perm() {
		return
	}
	ch, ok := fsys.(billy.Chmod)
	if !ok {
		return
	}
	if err := ch.Chmod(name, mode); err != nil {
		output.Warn("keeping existing permissions", "path", name[1:], "want", mode.Perm(), "err", err)
	}
}

// Match reports whether p matches the glob pattern. Malformed patterns
// match nothing.
func Match(pattern, p string) bool {
	ok, err := doublestar.Match(pattern, p)
	return err == nil && ok
}

// Excluded reports whether p matches any of the patterns.
func Excluded(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if Match(pattern, p) {
			return true
		}
	}
	return false
}

// ValidPattern reports whether pattern is a well-formed glob.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}

func key(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
