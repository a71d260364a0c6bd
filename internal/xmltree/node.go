// Package xmltree provides a navigable element tree for adverse event report
// XML, with stable positional addresses and canonical re-serialization. It
// deliberately models only what the compliance pipeline needs: elements,
// attributes and character data. Comments and processing instructions are
// dropped on parse.
package xmltree

import (
	"fmt"
	"strings"
)

// Attr is a single element attribute. Attribute order is preserved from the
// source document so serialization stays stable across parse cycles.
type Attr struct {
	Name  string
	Value string
}

// Node is one element in a parsed document tree. A node is exclusively owned
// by its parent; the parent pointer exists for address computation only and
// must never be used to transfer ownership.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node

	parent  *Node
	text    string
	hasText bool
}

// Parent returns the parent element, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Text returns the raw character data of the element. A node whose text is
// whitespace-only reports no text at all.
func (n *Node) Text() string {
	if !n.HasText() {
		return ""
	}
	return n.text
}

// TrimmedText returns the element text with surrounding whitespace removed.
func (n *Node) TrimmedText() string {
	return strings.TrimSpace(n.text)
}

// HasText reports whether the element carries non-whitespace character data.
func (n *Node) HasText() bool {
	return n.hasText && strings.TrimSpace(n.text) != ""
}

// SetText replaces the element's character data.
func (n *Node) SetText(text string) {
	n.text = text
	n.hasText = true
}

// ClearText removes the element's character data entirely. This is distinct
// from setting empty text: a cleared element is textless and will not be
// emitted by field extraction.
func (n *Node) ClearText() {
	n.text = ""
	n.hasText = false
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// AttrMap returns a copy of the attributes as a map.
func (n *Node) AttrMap() map[string]string {
	if len(n.Attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		m[a.Name] = a.Value
	}
	return m
}

// Document is a parsed XML document. Each pipeline invocation owns its own
// document; nothing in this package is safe for concurrent mutation.
type Document struct {
	root *Node
}

// Root returns the document's root element.
func (d *Document) Root() *Node {
	return d.root
}

// Walk visits every element in document order (pre-order), starting at the
// root. The walk stops early when fn returns false.
func (d *Document) Walk(fn func(*Node) bool) {
	walk(d.root, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// FindFirst returns the first descendant of the root with the given tag, in
// document order. The root element itself is never matched, mirroring a
// descendant-axis lookup. Tag comparison is exact and case-sensitive.
func (d *Document) FindFirst(tag string) *Node {
	var found *Node
	for _, c := range d.root.Children {
		walk(c, func(n *Node) bool {
			if n.Tag == tag {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// FindAll returns every descendant of the root with the given tag, in
// document order.
func (d *Document) FindAll(tag string) []*Node {
	var found []*Node
	for _, c := range d.root.Children {
		walk(c, func(n *Node) bool {
			if n.Tag == tag {
				found = append(found, n)
			}
			return true
		})
	}
	return found
}

// Address computes the positional address of a node as a path of tag names
// from the root, with 1-based indices disambiguating same-tag siblings, e.g.
// //safetyreport/patient/reaction[2]. The root tag is not part of the
// address. Addresses are stable under masking because masking never removes
// or reorders nodes.
func (d *Document) Address(n *Node) string {
	var parts []string
	for cur := n; cur != nil && cur != d.root; cur = cur.parent {
		parts = append(parts, siblingStep(cur))
	}
	// Reverse into document order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "//" + strings.Join(parts, "/")
}

// siblingStep renders one path component, appending [i] only when the node
// has same-tag siblings.
func siblingStep(n *Node) string {
	p := n.parent
	if p == nil {
		return n.Tag
	}
	same := 0
	index := 0
	for _, sib := range p.Children {
		if sib.Tag == n.Tag {
			same++
			if sib == n {
				index = same
			}
		}
	}
	if same > 1 {
		return fmt.Sprintf("%s[%d]", n.Tag, index)
	}
	return n.Tag
}
