package core

import "strings"

// RootName is the name of every project's root folder.
const RootName = "root"

// Default separators used when a caller passes the zero rune.
const (
	DefaultPathSeparator  = '/'
	DefaultFieldDelimiter = ','
)

// Project owns one tree of nodes rooted at a folder named "root".
// A Project is not safe for concurrent mutation; it has one writer while ingesting.
type Project struct {
	name           string
	pathSeparator  rune
	fieldDelimiter rune
	pathColumn     string
	duplicates     DuplicatePolicy

	root    *Folder
	folders int // excluding root
	files   int
}

// ProjectOption configures a Project at construction.
type ProjectOption func(*Project)

// WithPathColumn sets the header name that marks the path column.
func WithPathColumn(name string) ProjectOption {
	return func(p *Project) {
		if name != "" {
			p.pathColumn = name
		}
	}
}

// WithDuplicatePolicy sets how same-name siblings are handled.
func WithDuplicatePolicy(policy DuplicatePolicy) ProjectOption {
	return func(p *Project) { p.duplicates = policy }
}

// NewProject creates a project whose tree is a bare root folder.
func NewProject(name string, pathSeparator, fieldDelimiter rune, opts ...ProjectOption) *Project {
	if pathSeparator == 0 {
		pathSeparator = DefaultPathSeparator
	}
	if fieldDelimiter == 0 {
		fieldDelimiter = DefaultFieldDelimiter
	}
	p := &Project{
		name:           name,
		pathSeparator:  pathSeparator,
		fieldDelimiter: fieldDelimiter,
		pathColumn:     DefaultPathColumn,
		root:           NewFolder(RootName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromRoot wraps an existing tree, e.g. one loaded from storage.
// Folder and file counts are recomputed from the tree.
func FromRoot(name string, root *Folder, pathSeparator rune) *Project {
	p := NewProject(name, pathSeparator, 0)
	if root != nil {
		p.root = root
	}
	p.Walk(func(path []string, n Node) bool {
		if len(path) == 0 {
			return true
		}
		if n.Type() == NodeFolder {
			p.folders++
		} else {
			p.files++
		}
		return true
	})
	return p
}

func (p *Project) Name() string                     { return p.name }
func (p *Project) Root() *Folder                    { return p.root }
func (p *Project) PathSeparator() rune              { return p.pathSeparator }
func (p *Project) FieldDelimiter() rune             { return p.fieldDelimiter }
func (p *Project) PathColumn() string               { return p.pathColumn }
func (p *Project) DuplicatePolicy() DuplicatePolicy { return p.duplicates }

// Stats returns the number of folders (root excluded) and files in the tree.
func (p *Project) Stats() (folders, files int) {
	return p.folders, p.files
}

// Find follows names from the root and returns the node at the end of the path.
// With duplicate names the first match wins.
func (p *Project) Find(path ...string) (Node, bool) {
	var cur Node = p.root
	for _, name := range path {
		dir, ok := cur.(*Folder)
		if !ok {
			return nil, false
		}
		next, _ := dir.Child(name)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// FindPath is Find with a separator-joined path, e.g. "src/main.c".
func (p *Project) FindPath(path string) (Node, bool) {
	return p.Find(splitPath(path, p.pathSeparator)...)
}

// Walk visits nodes depth-first in child order, starting with the root (empty
// path). Returning false from fn skips the node's children.
func (p *Project) Walk(fn func(path []string, n Node) bool) {
	walk(nil, p.root, fn)
}

func walk(path []string, n Node, fn func([]string, Node) bool) {
	if !fn(path, n) {
		return
	}
	dir, ok := n.(*Folder)
	if !ok {
		return
	}
	for _, c := range dir.Children {
		walk(append(path[:len(path):len(path)], c.NodeName()), c, fn)
	}
}

// Paths lists every file as a separator-joined path, in tree order.
func (p *Project) Paths() []string {
	var out []string
	sep := string(p.pathSeparator)
	p.Walk(func(path []string, n Node) bool {
		if n.Type() == NodeFile {
			out = append(out, strings.Join(path, sep))
		}
		return true
	})
	return out
}
