package core

import (
	"reflect"
	"testing"
)

func TestSubstitutions_Apply(t *testing.T) {
	subs := Rename(map[string]string{"File Name": "path", "Lines": "loc"})
	subs, err := subs.WithPattern(`\s+`, "_")
	if err != nil {
		t.Fatal(err)
	}
	subs, err = subs.WithPattern(`^(?i)max_(\w+)$`, "max_$1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"File Name", "path"},          // exact
		{"Lines", "loc"},               // exact
		{"Block Depth", "Block_Depth"}, // first pattern
		{"Max Depth", "max_Depth"},     // patterns chain in order
		{"loc", "loc"},                 // untouched
		{"", ""},
	}
	for _, tt := range tests {
		if got := subs.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	got := subs.ApplyAll([]string{"File Name", "Lines"})
	if !reflect.DeepEqual(got, []string{"path", "loc"}) {
		t.Errorf("ApplyAll() = %v", got)
	}
}

func TestSubstitutions_Trivial(t *testing.T) {
	if !NoSubstitutions().IsTrivial() {
		t.Error("NoSubstitutions() should be trivial")
	}
	var zero Substitutions
	if zero.Apply("Path") != "Path" {
		t.Error("zero value should be the identity")
	}
	if Rename(map[string]string{"a": "b"}).IsTrivial() {
		t.Error("Rename() should not be trivial")
	}
}

func TestSubstitutions_Immutable(t *testing.T) {
	base := Rename(map[string]string{"a": "b"})
	derived := base.WithRename("a", "c").WithRename("x", "y")

	if base.Apply("a") != "b" || base.Apply("x") != "x" {
		t.Error("WithRename modified the receiver")
	}
	if derived.Apply("a") != "c" || derived.Apply("x") != "y" {
		t.Error("WithRename did not apply")
	}

	src := map[string]string{"k": "v"}
	s := Rename(src)
	src["k"] = "changed"
	if s.Apply("k") != "v" {
		t.Error("Rename should copy its map")
	}
}

func TestSubstitutions_Merge(t *testing.T) {
	a := Rename(map[string]string{"x": "1", "y": "2"})
	b := Rename(map[string]string{"y": "3"})
	b, _ = b.WithPattern("^z$", "4")

	m := a.Merge(b)
	for in, want := range map[string]string{"x": "1", "y": "3", "z": "4"} {
		if got := m.Apply(in); got != want {
			t.Errorf("Merge().Apply(%q) = %q, want %q", in, got, want)
		}
	}
	if a.Apply("y") != "2" {
		t.Error("Merge modified the receiver")
	}
}

func TestSubstitutions_InvalidPattern(t *testing.T) {
	base := NoSubstitutions()
	if _, err := base.WithPattern("(", "x"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
