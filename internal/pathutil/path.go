// Package pathutil implements the normalised path type and recursive
// directory enumeration the spec calls out as the Path & Filesystem Facade
// (spec.md §2, "Path & Filesystem Facade").
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Path is a normalised, forward-slash, project-relative path. Keeping a
// distinct type (rather than passing bare strings around) is what lets every
// pipeline and the Package Store agree on what "the same path" means
// regardless of the host OS's separator.
type Path string

// Normalize converts an OS path into the canonical forward-slash form used
// for AssetOrigin comparisons and cache-file keys.
func Normalize(p string) Path {
	return Path(filepath.ToSlash(filepath.Clean(p)))
}

func (p Path) String() string { return string(p) }

// Join appends more path segments, returning a normalised Path.
func (p Path) Join(elems ...string) Path {
	all := append([]string{string(p)}, elems...)
	return Normalize(filepath.Join(all...))
}

// Ext returns the file extension, including the leading dot.
func (p Path) Ext() string { return filepath.Ext(string(p)) }

// Base returns the file name with its extension.
func (p Path) Base() string { return filepath.Base(string(p)) }

// Stem returns the file name without its extension.
func (p Path) Stem() string {
	b := p.Base()
	return strings.TrimSuffix(b, p.Ext())
}

// Dir returns the parent directory.
func (p Path) Dir() Path { return Normalize(filepath.Dir(string(p))) }

// Exists reports whether the path exists on disk.
func (p Path) Exists() bool {
	_, err := os.Stat(string(p))
	return err == nil
}

// IsDir reports whether the path is an existing directory.
func (p Path) IsDir() bool {
	info, err := os.Stat(string(p))
	return err == nil && info.IsDir()
}

// EnsureDir creates the directory (and parents) if it doesn't exist.
func (p Path) EnsureDir() error {
	return os.MkdirAll(string(p), 0o755)
}

// ListRecursive walks the directory tree rooted at p and returns every
// regular file, optionally filtered by recurse: when recurse is false only
// direct children are listed.
func ListRecursive(root Path, recurse bool) ([]Path, error) {
	var out []Path
	err := filepath.WalkDir(string(root), func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recurse && walkPath != string(root) {
				return filepath.SkipDir
			}
			return nil
		}
		out = append(out, Normalize(walkPath))
		return nil
	})
	return out, err
}
