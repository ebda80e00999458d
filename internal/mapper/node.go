package mapper

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedDocument indicates the metadata document is not well-formed
// XML. This is distinct from field-level validation findings: nothing can
// be mapped from a document that does not parse.
var ErrMalformedDocument = errors.New("malformed metadata document")

// Node is a minimal view of an XML element: name, attributes, direct text
// content, and ordered children. It isolates the mapper from the XML
// library; everything above this file works purely in terms of Node.
type Node struct {
	name     string
	attrs    map[string]string
	text     string
	children []*Node
}

// parseDocument parses XML bytes into a Node tree and returns the root
// element.
func parseDocument(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root := &Node{}
	stack := []*Node{root}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.text += string(t)
		}
	}

	if len(root.children) == 0 {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	return root.children[0], nil
}

// Name returns the element name without namespace.
func (n *Node) Name() string {
	return n.name
}

// Text returns the element's direct character data, trimmed.
func (n *Node) Text() string {
	return strings.TrimSpace(n.text)
}

// Attr returns the named attribute value, trimmed, or "" if absent.
func (n *Node) Attr(name string) string {
	return strings.TrimSpace(n.attrs[name])
}

// HasAttr reports whether the named attribute is present and non-empty.
func (n *Node) HasAttr(name string) bool {
	return n.Attr(name) != ""
}

// Children returns all child elements in document order.
func (n *Node) Children() []*Node {
	return n.children
}

// ChildrenNamed returns all child elements with the given name, in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the trimmed text of the first child with the given
// name, or "" if no such child exists.
func (n *Node) ChildText(name string) string {
	if c := n.Child(name); c != nil {
		return c.Text()
	}
	return ""
}
