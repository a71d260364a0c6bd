package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Serialize renders the document back to bytes in a canonical form: an XML
// declaration followed by the element tree without synthetic indentation.
// Text and attribute values round-trip exactly, modulo escaping; a document
// that was produced by Serialize re-serializes to identical bytes.
func (d *Document) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := writeNode(&buf, d.root); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", d.root.Tag, err)
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.Value)); err != nil {
			return err
		}
		buf.WriteByte('"')
	}

	if !n.HasText() && len(n.Children) == 0 {
		buf.WriteString("/>")
		return nil
	}

	buf.WriteByte('>')
	if n.HasText() {
		if err := xml.EscapeText(buf, []byte(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := writeNode(buf, c); err != nil {
			return err
		}
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
	return nil
}
