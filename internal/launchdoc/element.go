package launchdoc

// InactivePrefix marks an excluded element's tag in serialized output.
const InactivePrefix = "_"

// Attr is one attribute of an element.
type Attr struct {
	Key   string
	Value string
}

// Element is a node of a launch descriptor.
type Element struct {
	Tag   string
	Attrs []Attr
	// Text is the character data before the first child.
	Text string
	// Tail is the character data after the closing tag, up to the next sibling.
	// Comments in between are not kept.
	Tail     string
	Children []*Element
	Inactive bool
}

// NewElement returns an element with the given tag and attributes, given as
// alternating key/value pairs.
func NewElement(tag string, kv ...string) *Element {
	e := &Element{Tag: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attrs = append(e.Attrs, Attr{Key: kv[i], Value: kv[i+1]})
	}
	return e
}

// Attr returns the value of the attribute named key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces the value of key in place, or appends it.
func (e *Element) SetAttr(key, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
}

// AddChild appends child and returns it.
func (e *Element) AddChild(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// Walk visits e and its descendants depth-first in document order. When fn
// returns false the children of that element are not visited.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// WireTag is the tag written to disk.
func (e *Element) WireTag() string {
	if e.Inactive {
		return InactivePrefix + e.Tag
	}
	return e.Tag
}
