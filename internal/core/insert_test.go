package core

import (
	"errors"
	"reflect"
	"testing"
)

func row(file string, folders ...string) DecodedRow {
	return DecodedRow{FolderPath: folders, FileName: file, Attributes: Attributes{}}
}

func childNames(f *Folder) []string {
	names := make([]string, len(f.Children))
	for i, c := range f.Children {
		names[i] = c.NodeName()
	}
	return names
}

func TestInsert_CreatesFolders(t *testing.T) {
	p := NewProject("p", '/', ',')
	if err := Insert(p, row("c.txt", "a", "b")); err != nil {
		t.Fatal(err)
	}

	a, ok := p.Find("a")
	if !ok || a.Type() != NodeFolder {
		t.Fatalf("a = %v, want folder", a)
	}
	b, ok := p.Find("a", "b")
	if !ok || b.Type() != NodeFolder {
		t.Fatalf("a/b = %v, want folder", b)
	}
	c, ok := p.Find("a", "b", "c.txt")
	if !ok || c.Type() != NodeFile {
		t.Fatalf("a/b/c.txt = %v, want file", c)
	}

	folders, files := p.Stats()
	if folders != 2 || files != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", folders, files)
	}
}

func TestInsert_ReusesFolders(t *testing.T) {
	p := NewProject("p", '/', ',')
	for _, r := range []DecodedRow{row("x.txt", "a"), row("y.txt", "a")} {
		if err := Insert(p, r); err != nil {
			t.Fatal(err)
		}
	}

	if got := childNames(p.Root()); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("root children = %v, want [a]", got)
	}
	a, _ := p.Root().ChildFolder("a")
	if got := childNames(a); !reflect.DeepEqual(got, []string{"x.txt", "y.txt"}) {
		t.Errorf("a children = %v, want [x.txt y.txt]", got)
	}
}

func TestInsert_PreservesInsertionOrder(t *testing.T) {
	p := NewProject("p", '/', ',')
	for _, r := range []DecodedRow{row("1", "b"), row("1", "a"), row("2", "b"), row("top")} {
		if err := Insert(p, r); err != nil {
			t.Fatal(err)
		}
	}
	if got := childNames(p.Root()); !reflect.DeepEqual(got, []string{"b", "a", "top"}) {
		t.Errorf("root children = %v, want [b a top]", got)
	}
	if got := p.Paths(); !reflect.DeepEqual(got, []string{"b/1", "b/2", "a/1", "top"}) {
		t.Errorf("Paths() = %v", got)
	}
}

func TestInsert_FoldersHaveNoAttributes(t *testing.T) {
	p := NewProject("p", '/', ',')
	r := DecodedRow{FolderPath: []string{"a"}, FileName: "f", Attributes: Attributes{"loc": Int(3)}}
	if err := Insert(p, r); err != nil {
		t.Fatal(err)
	}
	f, _ := p.Find("a", "f")
	if n, ok := f.(*File).Attributes.Number("loc"); !ok || n != Int(3) {
		t.Errorf("loc = %v, %v", n, ok)
	}
}

func TestInsert_DuplicatePolicies(t *testing.T) {
	first := DecodedRow{FolderPath: []string{"a"}, FileName: "x.txt", Attributes: Attributes{"v": Int(1)}}
	second := DecodedRow{FolderPath: []string{"a"}, FileName: "x.txt", Attributes: Attributes{"v": Int(2)}}

	tests := []struct {
		policy    DuplicatePolicy
		wantErr   bool
		wantNames []string
		wantFiles int
		wantV     Value // attribute of the first x.txt child
	}{
		{DuplicateAppend, false, []string{"x.txt", "x.txt"}, 2, Int(1)},
		{DuplicateReplace, false, []string{"x.txt"}, 1, Int(2)},
		{DuplicateReject, true, []string{"x.txt"}, 1, Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			p := NewProject("p", '/', ',', WithDuplicatePolicy(tt.policy))
			if err := Insert(p, first); err != nil {
				t.Fatal(err)
			}
			err := Insert(p, second)
			if tt.wantErr {
				var rse *RowShapeError
				if !errors.As(err, &rse) || rse.Reason != ReasonDuplicate {
					t.Fatalf("error = %v, want duplicate RowShapeError", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			a, _ := p.Root().ChildFolder("a")
			if got := childNames(a); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("children = %v, want %v", got, tt.wantNames)
			}
			if _, files := p.Stats(); files != tt.wantFiles {
				t.Errorf("files = %d, want %d", files, tt.wantFiles)
			}
			if got := a.Children[0].(*File).Attributes["v"]; got != tt.wantV {
				t.Errorf("v = %v, want %v", got, tt.wantV)
			}
		})
	}
}

func TestInsert_ReplaceNeverReplacesFolder(t *testing.T) {
	p := NewProject("p", '/', ',', WithDuplicatePolicy(DuplicateReplace))
	if err := Insert(p, row("c.txt", "a", "b")); err != nil {
		t.Fatal(err)
	}
	err := Insert(p, row("b", "a"))
	if !errors.Is(err, ErrRowShape) {
		t.Fatalf("error = %v, want ErrRowShape", err)
	}
	if n, _ := p.Find("a", "b"); n.Type() != NodeFolder {
		t.Errorf("a/b replaced by %v", n.Type())
	}
}

func TestInsert_FolderSegmentCollidesWithFile(t *testing.T) {
	t.Run("append creates folder next to file", func(t *testing.T) {
		p := NewProject("p", '/', ',')
		_ = Insert(p, row("a"))
		if err := Insert(p, row("x", "a")); err != nil {
			t.Fatal(err)
		}
		if got := childNames(p.Root()); !reflect.DeepEqual(got, []string{"a", "a"}) {
			t.Errorf("root children = %v, want [a a]", got)
		}
		if n, ok := p.Find("a"); !ok || n.Type() != NodeFile {
			t.Errorf("first a should stay a file")
		}
	})

	t.Run("reject leaves tree unchanged", func(t *testing.T) {
		p := NewProject("p", '/', ',', WithDuplicatePolicy(DuplicateReject))
		_ = Insert(p, row("a"))
		err := Insert(p, row("d", "a", "b", "c"))
		if !errors.Is(err, ErrRowShape) {
			t.Fatalf("error = %v, want ErrRowShape", err)
		}
		if got := childNames(p.Root()); !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("root children = %v, want [a]", got)
		}
		if folders, files := p.Stats(); folders != 0 || files != 1 {
			t.Errorf("Stats() = (%d, %d), want (0, 1)", folders, files)
		}
	})
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", DuplicateAppend, false},
		{"append", DuplicateAppend, false},
		{"Replace", DuplicateReplace, false},
		{" REJECT ", DuplicateReject, false},
		{"merge", DuplicateAppend, true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuplicatePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseDuplicatePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
