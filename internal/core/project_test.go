package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewProject(t *testing.T) {
	p := NewProject("demo", 0, 0)
	if p.Name() != "demo" || p.Root().Name != RootName {
		t.Errorf("project = %q root %q", p.Name(), p.Root().Name)
	}
	if p.PathSeparator() != DefaultPathSeparator || p.FieldDelimiter() != DefaultFieldDelimiter {
		t.Errorf("separators = %q %q", p.PathSeparator(), p.FieldDelimiter())
	}
	if p.PathColumn() != DefaultPathColumn || p.DuplicatePolicy() != DuplicateAppend {
		t.Errorf("defaults = %q %v", p.PathColumn(), p.DuplicatePolicy())
	}
	if len(p.Root().Children) != 0 {
		t.Error("new project should have a bare root")
	}
}

func TestProject_WalkAndFind(t *testing.T) {
	p := NewProject("demo", '/', ',')
	if _, err := p.AddProjectFromCSV(strings.NewReader("path\na/x\na/b/y\nz\n")); err != nil {
		t.Fatal(err)
	}

	var visited []string
	p.Walk(func(path []string, n Node) bool {
		visited = append(visited, strings.Join(path, "/")+":"+string(n.Type()))
		return true
	})
	want := []string{":Folder", "a:Folder", "a/x:File", "a/b:Folder", "a/b/y:File", "z:File"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("Walk order = %v, want %v", visited, want)
	}

	var pruned []string
	p.Walk(func(path []string, n Node) bool {
		pruned = append(pruned, strings.Join(path, "/"))
		return len(path) == 0
	})
	if !reflect.DeepEqual(pruned, []string{"", "a", "z"}) {
		t.Errorf("pruned Walk = %v", pruned)
	}

	if _, ok := p.FindPath("a/b/y"); !ok {
		t.Error("FindPath(a/b/y) failed")
	}
	if _, ok := p.Find("a", "x", "deeper"); ok {
		t.Error("Find through a file should fail")
	}
	if _, ok := p.Find("nope"); ok {
		t.Error("Find(nope) should fail")
	}
	if n, ok := p.Find(); !ok || n != Node(p.Root()) {
		t.Error("Find() should return the root")
	}
}

func TestFromRoot(t *testing.T) {
	root := NewFolder(RootName)
	sub := NewFolder("src")
	sub.Children = append(sub.Children, NewFile("a.c", nil), NewFile("b.c", Attributes{"loc": Int(1)}))
	root.Children = append(root.Children, sub, NewFile("README", nil))

	p := FromRoot("loaded", root, '/')
	folders, files := p.Stats()
	if folders != 1 || files != 3 {
		t.Errorf("Stats() = (%d, %d), want (1, 3)", folders, files)
	}
	n, _ := p.Find("src", "a.c")
	if n.(*File).Attributes == nil {
		t.Error("NewFile(nil) should produce an empty attribute map")
	}
}
