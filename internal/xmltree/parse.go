package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrMalformed marks input that cannot be parsed into a document tree.
// Callers branch on it with errors.Is.
var ErrMalformed = errors.New("malformed xml document")

// Parse builds a document tree from raw XML bytes. Input must be valid UTF-8;
// non-UTF-8 input is rejected, not transcoded. Namespace prefixes are
// stripped: tags and attributes are addressed by local name, matching how the
// regulated field tables identify elements.
func Parse(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrMalformed)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *Node
	var current *Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && current == nil {
				return nil, fmt.Errorf("%w: content after document element", ErrMalformed)
			}
			node := &Node{Tag: t.Name.Local, parent: current}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				node.Attrs = append(node.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if current == nil {
				root = node
			} else {
				current.Children = append(current.Children, node)
			}
			current = node

		case xml.EndElement:
			if current == nil {
				return nil, fmt.Errorf("%w: unexpected closing tag </%s>", ErrMalformed, t.Name.Local)
			}
			current = current.parent

		case xml.CharData:
			if current != nil {
				current.text += string(t)
				current.hasText = true
			} else if root != nil && strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: text after document element", ErrMalformed)
			}

		// Comments, directives and processing instructions carry no
		// regulated content and are dropped.
		case xml.Comment, xml.Directive, xml.ProcInst:
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no document element", ErrMalformed)
	}
	if current != nil {
		return nil, fmt.Errorf("%w: unterminated element <%s>", ErrMalformed, current.Tag)
	}

	return &Document{root: root}, nil
}
