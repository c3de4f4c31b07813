// Package export writes projects in the cc.json layout and reads them back.
//
// A document has a single root folder named "root":
//
//	{"projectName":"demo","apiVersion":"1.0","nodes":[
//	  {"name":"root","type":"Folder","attributes":{},"children":[
//	    {"name":"main.c","type":"File","attributes":{"loc":100}}]}]}
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/csvtree/internal/core"
)

// APIVersion is written into every document.
const APIVersion = "1.0"

// ErrInvalidDocument is returned by Decode for input that is JSON but not a
// project document.
var ErrInvalidDocument = errors.New("invalid project document")

// Document is the top-level cc.json object.
type Document struct {
	ProjectName string `json:"projectName"`
	APIVersion  string `json:"apiVersion"`
	Nodes       []Node `json:"nodes"`
}

// Node is one tree node in a Document. Files never carry children.
type Node struct {
	Name       string        `json:"name"`
	Type       core.NodeType `json:"type"`
	Attributes Attributes    `json:"attributes"`
	Children   []Node        `json:"children,omitempty"`
}

// Attributes is core.Attributes with JSON decoding: strings become Text and
// numbers become Number, integral when written without fraction or exponent.
type Attributes core.Attributes

func (a *Attributes) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	out := make(Attributes, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = core.Text(v)
		case json.Number:
			if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
				out[k] = core.Int(i)
				continue
			}
			f, err := v.Float64()
			if err != nil {
				return fmt.Errorf("attribute %q: %w", k, err)
			}
			out[k] = core.Float(f)
		default:
			return fmt.Errorf("attribute %q: unsupported value %T", k, v)
		}
	}
	*a = out
	return nil
}

// NewDocument converts a project into its document form.
func NewDocument(p *core.Project) Document {
	return Document{
		ProjectName: p.Name(),
		APIVersion:  APIVersion,
		Nodes:       []Node{toNode(p.Root())},
	}
}

func toNode(n core.Node) Node {
	switch n := n.(type) {
	case *core.Folder:
		out := Node{
			Name:       n.Name,
			Type:       core.NodeFolder,
			Attributes: Attributes{},
			Children:   make([]Node, 0, len(n.Children)),
		}
		for _, c := range n.Children {
			out.Children = append(out.Children, toNode(c))
		}
		return out
	case *core.File:
		attrs := Attributes(n.Attributes)
		if attrs == nil {
			attrs = Attributes{}
		}
		return Node{Name: n.Name, Type: core.NodeFile, Attributes: attrs}
	default:
		panic(fmt.Sprintf("export: unknown node %T", n))
	}
}

// Encode writes p as a compact cc.json document followed by a newline.
func Encode(w io.Writer, p *core.Project) error {
	return json.NewEncoder(w).Encode(NewDocument(p))
}

// EncodeIndent writes p as an indented cc.json document.
func EncodeIndent(w io.Writer, p *core.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(p))
}

// Marshal returns the compact cc.json encoding of p.
func Marshal(p *core.Project) ([]byte, error) {
	return json.Marshal(NewDocument(p))
}

// Decode reads a cc.json document into a project. The path separator is not
// part of the document and must be supplied.
func Decode(r io.Reader, pathSeparator rune) (*core.Project, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return doc.Project(pathSeparator)
}

// Project rebuilds the tree described by doc.
func (doc Document) Project(pathSeparator rune) (*core.Project, error) {
	if len(doc.Nodes) != 1 {
		return nil, fmt.Errorf("%w: want 1 root node, got %d", ErrInvalidDocument, len(doc.Nodes))
	}
	top := doc.Nodes[0]
	if top.Type != core.NodeFolder || top.Name != core.RootName {
		return nil, fmt.Errorf("%w: root node is %s %q", ErrInvalidDocument, top.Type, top.Name)
	}

	root, err := fromNode(top)
	if err != nil {
		return nil, err
	}
	return core.FromRoot(doc.ProjectName, root.(*core.Folder), pathSeparator), nil
}

func fromNode(n Node) (core.Node, error) {
	if n.Name == "" {
		return nil, fmt.Errorf("%w: node without name", ErrInvalidDocument)
	}
	switch n.Type {
	case core.NodeFolder:
		f := core.NewFolder(n.Name)
		for _, c := range n.Children {
			child, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			f.Children = append(f.Children, child)
		}
		return f, nil
	case core.NodeFile:
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("%w: file %q has children", ErrInvalidDocument, n.Name)
		}
		return core.NewFile(n.Name, core.Attributes(n.Attributes)), nil
	default:
		return nil, fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidDocument, n.Name, n.Type)
	}
}
