package launchdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// Document is a parsed launch descriptor.
type Document struct {
	Path string
	Root *Element
}

// ErrNoRoot is returned for input without a root element.
var ErrNoRoot = errors.New("document has no root element")

// ParseFile reads and parses the launch descriptor at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open launch descriptor: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a launch descriptor from r. path is only recorded on the
// result.
func Parse(r io.Reader, path string) (*Document, error) {
	xdoc := etree.NewDocument()
	if _, err := xdoc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	root := xdoc.Root()
	if root == nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, ErrNoRoot)
	}
	return &Document{Path: path, Root: fromEtree(root)}, nil
}

// fromEtree converts x and its subtree. Comments and processing
// instructions are dropped; character data around them is joined into the
// Text of x or the Tail of the preceding child, so no text is lost.
func fromEtree(x *etree.Element) *Element {
	e := &Element{Tag: x.FullTag()}
	if strings.HasPrefix(e.Tag, InactivePrefix) {
		e.Tag = strings.TrimPrefix(e.Tag, InactivePrefix)
		e.Inactive = true
	}
	for _, a := range x.Attr {
		e.Attrs = append(e.Attrs, Attr{Key: a.FullKey(), Value: a.Value})
	}
	var last *Element
	for _, tok := range x.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if last == nil {
				e.Text += t.Data
			} else {
				last.Tail += t.Data
			}
		case *etree.Element:
			last = fromEtree(t)
			e.Children = append(e.Children, last)
		}
	}
	return e
}

func toEtree(e *Element) *etree.Element {
	x := etree.NewElement(e.WireTag())
	for _, a := range e.Attrs {
		x.CreateAttr(a.Key, a.Value)
	}
	if e.Text != "" {
		x.SetText(e.Text)
	}
	for _, c := range e.Children {
		cx := toEtree(c)
		x.AddChild(cx)
		if c.Tail != "" {
			cx.SetTail(c.Tail)
		}
	}
	return x
}

// Marshal serializes the document, inactive elements included.
func (d *Document) Marshal() ([]byte, error) {
	if d.Root == nil {
		return nil, ErrNoRoot
	}
	xdoc := etree.NewDocument()
	xdoc.SetRoot(toEtree(d.Root))
	var buf bytes.Buffer
	if _, err := xdoc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", d.Path, err)
	}
	return buf.Bytes(), nil
}

// DerivedPath is where the reduced form of the descriptor at path is written.
func DerivedPath(path, suffix string) string {
	return path + suffix
}
