package core

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// NodeType distinguishes the two node variants.
type NodeType string

const (
	NodeFolder NodeType = "Folder"
	NodeFile   NodeType = "File"
)

// Node is either a *Folder or a *File.
// The unexported marker method keeps the set of variants closed.
type Node interface {
	NodeName() string
	Type() NodeType
	node()
}

// Folder is an intermediate node. It never carries attributes.
type Folder struct {
	Name     string
	Children []Node // insertion order
}

// File is a leaf carrying the metrics of exactly one input row.
type File struct {
	Name       string
	Attributes Attributes
}

func (f *Folder) NodeName() string { return f.Name }
func (f *Folder) Type() NodeType   { return NodeFolder }
func (*Folder) node()              {}

func (f *File) NodeName() string { return f.Name }
func (f *File) Type() NodeType   { return NodeFile }
func (*File) node()              {}

// NewFolder returns an empty folder.
func NewFolder(name string) *Folder {
	return &Folder{Name: name}
}

// NewFile returns a leaf with the given attributes. A nil map is replaced by an empty one.
func NewFile(name string, attrs Attributes) *File {
	if attrs == nil {
		attrs = Attributes{}
	}
	return &File{Name: name, Attributes: attrs}
}

// ChildFolder returns the first child folder with exactly this name.
func (f *Folder) ChildFolder(name string) (*Folder, bool) {
	for _, c := range f.Children {
		if sub, ok := c.(*Folder); ok && sub.Name == name {
			return sub, true
		}
	}
	return nil, false
}

// Child returns the first child of any type with this name and its position.
func (f *Folder) Child(name string) (Node, int) {
	for i, c := range f.Children {
		if c.NodeName() == name {
			return c, i
		}
	}
	return nil, -1
}

// Value is an attribute value: Number or Text.
type Value interface {
	String() string
	value()
}

// Number is a numeric attribute value. Integral values remember that they were
// parsed as integers so they serialize without a fractional part.
type Number struct {
	f        float64
	i        int64
	integral bool
}

// Text is a non-numeric attribute value, kept verbatim.
type Text string

func (Number) value() {}
func (Text) value()   {}

// Int returns an integral Number.
func Int(i int64) Number { return Number{f: float64(i), i: i, integral: true} }

// Float returns a floating-point Number.
func Float(f float64) Number { return Number{f: f} }

// Float64 returns the value as a float64.
func (n Number) Float64() float64 { return n.f }

// Int64 returns the integer value and whether the number was integral.
func (n Number) Int64() (int64, bool) { return n.i, n.integral }

// IsInt reports whether the number was parsed from an integer literal.
func (n Number) IsInt() bool { return n.integral }

// String formats integral numbers without a fraction. Other numbers always
// carry a decimal point or an exponent, so "3.0" stays a float when read back.
func (n Number) String() string {
	if n.integral {
		return strconv.FormatInt(n.i, 10)
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// MarshalJSON writes the number as a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.integral && (math.IsNaN(n.f) || math.IsInf(n.f, 0)) {
		return json.Marshal(n.String())
	}
	return []byte(n.String()), nil
}

func (t Text) String() string { return string(t) }

// Attributes maps attribute names to typed values.
type Attributes map[string]Value

// Keys returns the attribute names sorted alphabetically.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Number returns the numeric attribute with this name, if present.
func (a Attributes) Number(name string) (Number, bool) {
	n, ok := a[name].(Number)
	return n, ok
}

// DecodedRow is one input row broken into its tree location and attributes.
type DecodedRow struct {
	FolderPath []string
	FileName   string
	Attributes Attributes
}

// FailedRow contains information about a row that was skipped.
type FailedRow struct {
	Line   int      `json:"line"`
	Reason string   `json:"reason"`
	Data   []string `json:"data,omitempty"`
}

// IngestResult summarizes one ingestion call.
type IngestResult struct {
	Rows       int         `json:"rows"` // data rows seen, header excluded
	Inserted   int         `json:"inserted"`
	Skipped    int         `json:"skipped"`
	FailedRows []FailedRow `json:"failed_rows,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	Header     Header      `json:"-"` // zero when the header was rejected
}
