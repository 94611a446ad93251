package view

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Path is one view root, possibly rebound to a subdirectory of it.
type Path struct {
	fsys fs.FS
	root string
	dir  string
}

// DirPath roots template lookup at a directory on disk.
func DirPath(dir string) Path {
	return Path{fsys: os.DirFS(dir), root: dir, dir: "."}
}

// FSPath roots template lookup at fsys, e.g. an embed.FS sub tree.
func FSPath(fsys fs.FS) Path {
	return Path{fsys: fsys, root: fmt.Sprintf("%T", fsys), dir: "."}
}

// Root identifies the view root in errors and logs.
func (p Path) Root() string {
	return p.root
}

// Dir returns the directory lookups start from, relative to the root.
func (p Path) Dir() string {
	return p.dir
}

// FS returns the filesystem backing the root.
func (p Path) FS() fs.FS {
	return p.fsys
}

// Chdir rebinds the path to dir, relative to the current directory.
func (p Path) Chdir(dir string) Path {
	p.dir = path.Join(p.dir, cleanName(dir))
	return p
}

func (p Path) isRoot() bool {
	return p.dir == "." || p.dir == ""
}

// lookup finds name for format starting at the current directory: the
// template itself, then shared/name, then the same in each parent up to the
// root. It returns the file path and the engine extension that matched.
// Names and directories that leave the root never match.
func (p Path) lookup(name, format string, exts []string) (string, string, bool) {
	name = cleanName(name)
	if !validName(name) {
		return "", "", false
	}
	for current := p; validName(current.dir); current = current.Chdir("..") {
		if file, ext, ok := current.template(name, format, exts); ok {
			return file, ext, true
		}
		if file, ext, ok := current.template(path.Join("shared", name), format, exts); ok {
			return file, ext, true
		}
		if current.isRoot() {
			break
		}
	}
	return "", "", false
}

func (p Path) template(name, format string, exts []string) (string, string, bool) {
	if p.fsys == nil {
		return "", "", false
	}
	base := path.Join(p.dir, name)
	for _, ext := range exts {
		file := base + "." + format + "." + ext
		if !fs.ValidPath(file) {
			continue
		}
		info, err := fs.Stat(p.fsys, file)
		if err != nil || info.IsDir() {
			continue
		}
		return file, ext, true
	}
	return "", "", false
}

// validName reports whether name stays inside the view root.
func validName(name string) bool {
	return name == "" || fs.ValidPath(name)
}

func cleanName(name string) string {
	return strings.Trim(strings.TrimSpace(name), "/")
}
