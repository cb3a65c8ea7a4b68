// Package virtualfs is the in-memory file tree owned by one terminal session.
//
// A tree is not safe for concurrent use. The owning session serializes all
// access through its event loop.
package virtualfs

import (
	"sort"
)

// Node is either a *File or a *Directory.
type Node interface {
	isNode()
}

// File holds text content.
type File struct {
	Content string
}

// Directory maps child names to nodes.
type Directory struct {
	Children map[string]Node
}

func (*File) isNode()      {}
func (*Directory) isNode() {}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{Children: make(map[string]Node)}
}

// Entry is one line of a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// Resolution is the outcome of walking a path.
type Resolution struct {
	Node   Node       // nil if the path does not exist
	Parent *Directory // last directory entered, nil when Node is the start node
	Name   string     // last segment of the path
	Err    error      // ErrNotFound or ErrNotADirectory when Node is nil
}

// Resolve walks p from the directory from. It stops at the first segment
// that is missing or that would have to enter a file.
func Resolve(from *Directory, p Path) Resolution {
	res := Resolution{Node: from, Name: p.Base()}
	var current Node = from
	for _, seg := range p {
		dir, ok := current.(*Directory)
		if !ok {
			return Resolution{Parent: res.Parent, Name: res.Name, Err: ErrNotADirectory}
		}
		child, exists := dir.Children[seg]
		if !exists {
			return Resolution{Parent: dir, Name: res.Name, Err: ErrNotFound}
		}
		res.Parent = dir
		current = child
	}
	res.Node = current
	return res
}

// FS owns a tree rooted at a directory.
type FS struct {
	root *Directory
}

// New returns a file system with an empty root.
func New() *FS {
	return &FS{root: NewDirectory()}
}

// Root returns the root directory.
func (fs *FS) Root() *Directory { return fs.root }

// Resolve walks p from the root.
func (fs *FS) Resolve(p Path) Resolution {
	return Resolve(fs.root, p)
}

// Stat returns the node at p.
func (fs *FS) Stat(p Path) (Node, error) {
	res := fs.Resolve(p)
	if res.Node == nil {
		return nil, &PathError{Op: "stat", Path: p.String(), Err: res.Err}
	}
	return res.Node, nil
}

// parentDir returns the directory that should contain p.
func (fs *FS) parentDir(op string, p Path) (*Directory, error) {
	if len(p) == 0 {
		return nil, &PathError{Op: op, Path: p.String(), Err: ErrRoot}
	}
	res := fs.Resolve(p.Dir())
	if res.Node == nil {
		return nil, &PathError{Op: op, Path: p.String(), Err: res.Err}
	}
	dir, ok := res.Node.(*Directory)
	if !ok {
		return nil, &PathError{Op: op, Path: p.String(), Err: ErrNotADirectory}
	}
	return dir, nil
}

func (fs *FS) create(op string, p Path, node Node) error {
	if len(p) == 0 {
		return &PathError{Op: op, Path: p.String(), Err: ErrAlreadyExists}
	}
	parent, err := fs.parentDir(op, p)
	if err != nil {
		return err
	}
	if _, exists := parent.Children[p.Base()]; exists {
		return &PathError{Op: op, Path: p.String(), Err: ErrAlreadyExists}
	}
	parent.Children[p.Base()] = node
	return nil
}

// CreateFile inserts an empty file at p.
func (fs *FS) CreateFile(p Path) error {
	return fs.create("createFile", p, &File{})
}

// CreateDirectory inserts an empty directory at p.
func (fs *FS) CreateDirectory(p Path) error {
	return fs.create("createDirectory", p, NewDirectory())
}

// Remove deletes the entry at p. Directories need recursive, and the whole
// subtree goes with them.
func (fs *FS) Remove(p Path, recursive bool) error {
	if len(p) == 0 {
		return &PathError{Op: "remove", Path: p.String(), Err: ErrRoot}
	}
	res := fs.Resolve(p)
	if res.Node == nil {
		return &PathError{Op: "remove", Path: p.String(), Err: ErrNotFound}
	}
	if _, isDir := res.Node.(*Directory); isDir && !recursive {
		return &PathError{Op: "remove", Path: p.String(), Err: ErrIsADirectory}
	}
	delete(res.Parent.Children, res.Name)
	return nil
}

// ReadFile returns the content of the file at p.
func (fs *FS) ReadFile(p Path) (string, error) {
	res := fs.Resolve(p)
	switch n := res.Node.(type) {
	case *File:
		return n.Content, nil
	case *Directory:
		return "", &PathError{Op: "readFile", Path: p.String(), Err: ErrNotAFile}
	default:
		return "", &PathError{Op: "readFile", Path: p.String(), Err: ErrNotFound}
	}
}

// WriteFile replaces the content of an existing file in place.
func (fs *FS) WriteFile(p Path, content string) error {
	res := fs.Resolve(p)
	switch n := res.Node.(type) {
	case *File:
		n.Content = content
		return nil
	case *Directory:
		return &PathError{Op: "writeFile", Path: p.String(), Err: ErrNotAFile}
	default:
		return &PathError{Op: "writeFile", Path: p.String(), Err: ErrNotFound}
	}
}

// List returns the entries of the directory at p sorted by name.
func (fs *FS) List(p Path) ([]Entry, error) {
	res := fs.Resolve(p)
	switch n := res.Node.(type) {
	case *Directory:
		entries := make([]Entry, 0, len(n.Children))
		for name, child := range n.Children {
			_, isDir := child.(*Directory)
			entries = append(entries, Entry{Name: name, IsDir: isDir})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		return entries, nil
	case *File:
		return nil, &PathError{Op: "list", Path: p.String(), Err: ErrNotADirectory}
	default:
		return nil, &PathError{Op: "list", Path: p.String(), Err: ErrNotFound}
	}
}

// IsDir reports whether p names a directory.
func (fs *FS) IsDir(p Path) bool {
	_, ok := fs.Resolve(p).Node.(*Directory)
	return ok
}

// Clone returns a deep copy that shares nothing with fs.
func (fs *FS) Clone() *FS {
	return &FS{root: cloneDir(fs.root)}
}

func cloneDir(d *Directory) *Directory {
	out := NewDirectory()
	for name, child := range d.Children {
		switch n := child.(type) {
		case *File:
			out.Children[name] = &File{Content: n.Content}
		case *Directory:
			out.Children[name] = cloneDir(n)
		}
	}
	return out
}
