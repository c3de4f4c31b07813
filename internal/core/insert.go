package core

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides what happens when a new file's name is already taken
// by a sibling.
type DuplicatePolicy int

const (
	// DuplicateAppend adds the file anyway; siblings may share a name.
	DuplicateAppend DuplicatePolicy = iota
	// DuplicateReplace swaps an existing file sibling for the new one, keeping
	// its position. A folder sibling is never replaced.
	DuplicateReplace
	// DuplicateReject refuses the row.
	DuplicateReject
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReplace:
		return "replace"
	case DuplicateReject:
		return "reject"
	default:
		return "append"
	}
}

// ParseDuplicatePolicy accepts "append", "replace" or "reject" (any case).
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return DuplicateAppend, nil
	case "replace":
		return DuplicateReplace, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return DuplicateAppend, fmt.Errorf("unknown duplicate policy %q (want append, replace or reject)", s)
	}
}

// Insert folds a decoded row into the project's tree.
//
// Missing folders along row.FolderPath are created; existing folders are
// reused, so inserting the same folder path twice never duplicates it. The
// file is then attached according to the project's DuplicatePolicy. A refused
// row returns a *RowShapeError and leaves the tree unchanged.
func Insert(p *Project, row DecodedRow) error {
	if err := checkCollisions(p, row); err != nil {
		return err
	}

	dir := p.root
	for _, seg := range row.FolderPath {
		next, ok := dir.ChildFolder(seg)
		if !ok {
			next = NewFolder(seg)
			dir.Children = append(dir.Children, next)
			p.folders++
		}
		dir = next
	}

	leaf := NewFile(row.FileName, row.Attributes)

	if p.duplicates == DuplicateReplace {
		if existing, idx := dir.Child(row.FileName); existing != nil {
			// checkCollisions guarantees a file here.
			dir.Children[idx] = leaf
			return nil
		}
	}

	dir.Children = append(dir.Children, leaf)
	p.files++
	return nil
}

// checkCollisions runs the policy checks before the tree is touched, so a
// rejected row does not leave freshly created empty folders behind.
func checkCollisions(p *Project, row DecodedRow) error {
	if p.duplicates == DuplicateAppend {
		return nil
	}

	dir := p.root
	for i, seg := range row.FolderPath {
		next, ok := dir.ChildFolder(seg)
		if ok {
			dir = next
			continue
		}
		if other, _ := dir.Child(seg); other != nil {
			return rowShapeErr(ReasonDuplicate, "folder %q collides with file %q",
				strings.Join(row.FolderPath[:i+1], string(p.pathSeparator)), other.NodeName())
		}
		// The rest of the path is new, nothing further can collide.
		return nil
	}

	existing, _ := dir.Child(row.FileName)
	if existing == nil {
		return nil
	}

	fullPath := strings.Join(append(append([]string(nil), row.FolderPath...), row.FileName), string(p.pathSeparator))
	if p.duplicates == DuplicateReject {
		return rowShapeErr(ReasonDuplicate, "%s %q already exists", strings.ToLower(string(existing.Type())), fullPath)
	}
	if existing.Type() == NodeFolder {
		return rowShapeErr(ReasonDuplicate, "file %q would replace a folder", fullPath)
	}
	return nil
}
