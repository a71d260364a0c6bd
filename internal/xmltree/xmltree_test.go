package xmltree

import (
	"bytes"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Run("BasicDocument", func(t *testing.T) {
		doc, err := Parse([]byte(`<report><patient><patientinitial>JS</patientinitial></patient></report>`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Root().Tag != "report" {
			t.Errorf("Unexpected root tag: %s", doc.Root().Tag)
		}

		n := doc.FindFirst("patientinitial")
		if n == nil {
			t.Fatal("patientinitial not found")
		}
		if n.TrimmedText() != "JS" {
			t.Errorf("Unexpected text: %q", n.TrimmedText())
		}
	})

	t.Run("AttributesPreserveOrder", func(t *testing.T) {
		doc, err := Parse([]byte(`<r><e b="2" a="1"/></r>`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		e := doc.FindFirst("e")
		if len(e.Attrs) != 2 || e.Attrs[0].Name != "b" || e.Attrs[1].Name != "a" {
			t.Errorf("Attribute order not preserved: %+v", e.Attrs)
		}
	})

	t.Run("NamespacePrefixStripped", func(t *testing.T) {
		doc, err := Parse([]byte(`<ich:report xmlns:ich="urn:ich"><ich:patient/></ich:report>`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if doc.Root().Tag != "report" {
			t.Errorf("Namespace prefix not stripped: %s", doc.Root().Tag)
		}
		if doc.FindFirst("patient") == nil {
			t.Error("Prefixed child not addressable by local name")
		}
	})

	t.Run("RootExcludedFromSearch", func(t *testing.T) {
		doc, err := Parse([]byte(`<patient><patient>inner</patient></patient>`))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		found := doc.FindAll("patient")
		if len(found) != 1 {
			t.Fatalf("Expected 1 descendant match, got %d", len(found))
		}
		if found[0].TrimmedText() != "inner" {
			t.Error("FindAll matched the root element")
		}
	})

	malformed := map[string]string{
		"Unterminated":    `<report><patient></report>`,
		"TrailingElement": `<report/><extra/>`,
		"TrailingText":    `<report/>stray`,
		"Empty":           ``,
		"NoElement":       `<!-- only a comment -->`,
	}
	for name, input := range malformed {
		t.Run("Malformed"+name, func(t *testing.T) {
			if _, err := Parse([]byte(input)); !errors.Is(err, ErrMalformed) {
				t.Errorf("Expected ErrMalformed, got %v", err)
			}
		})
	}

	t.Run("NonUTF8Rejected", func(t *testing.T) {
		if _, err := Parse([]byte{'<', 'a', '>', 0xff, 0xfe, '<', '/', 'a', '>'}); !errors.Is(err, ErrMalformed) {
			t.Errorf("Expected ErrMalformed for non-UTF-8 input, got %v", err)
		}
	})
}

func TestSerializeFixpoint(t *testing.T) {
	input := []byte(`<report code="r&amp;d">
  <patient>
    <patientinitial>JS</patientinitial>
    <empty/>
  </patient>
</report>`)

	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	first, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	doc2, err := Parse(first)
	if err != nil {
		t.Fatalf("Reparse failed: %v", err)
	}
	second, err := doc2.Serialize()
	if err != nil {
		t.Fatalf("Second serialize failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("Serialization is not a fixpoint:\nfirst:  %s\nsecond: %s", first, second)
	}
	if !bytes.HasPrefix(first, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Error("Missing XML declaration")
	}
}

func TestClearTextDistinctFromEmpty(t *testing.T) {
	doc, err := Parse([]byte(`<r><e>value</e></r>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	e := doc.FindFirst("e")

	e.SetText("")
	if e.HasText() {
		t.Error("Whitespace-only text should report no text")
	}

	e.SetText("x")
	e.ClearText()
	if e.HasText() || e.Text() != "" {
		t.Error("ClearText did not remove character data")
	}

	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !bytes.Contains(out, []byte(`<e/>`)) {
		t.Errorf("Cleared element not self-closing: %s", out)
	}
}

func TestAddress(t *testing.T) {
	doc, err := Parse([]byte(`<r><a><b>1</b></a><a><b>2</b><b>3</b></a></r>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		text string
		want string
	}{
		{"1", "//a[1]/b"},
		{"2", "//a[2]/b[1]"},
		{"3", "//a[2]/b[2]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var target *Node
			doc.Walk(func(n *Node) bool {
				if n.TrimmedText() == tt.text {
					target = n
					return false
				}
				return true
			})
			if target == nil {
				t.Fatalf("Node with text %q not found", tt.text)
			}
			if got := doc.Address(target); got != tt.want {
				t.Errorf("Address = %q, want %q", got, tt.want)
			}
		})
	}
}
