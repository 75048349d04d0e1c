package adapter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// rawNode is the loosely typed form of a decoded XML element.
// Attributes live under "$", text next to child elements under "_", and every
// child element name maps to a []any holding one value per occurrence.
// A child with neither attributes nor children collapses to its text.
type rawNode map[string]any

// values returns the text of every occurrence of key. A missing key yields nil.
func (n rawNode) values(key string) []string {
	seq, ok := n[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(seq))
	for _, v := range seq {
		switch v := v.(type) {
		case string:
			out = append(out, v)
		case rawNode:
			text, _ := v["_"].(string)
			out = append(out, text)
		}
	}
	return out
}

// joined returns the occurrences of key joined with ", ", or "" when absent.
func (n rawNode) joined(key string) string {
	return strings.Join(n.values(key), ", ")
}

// has reports whether key occurred at least once.
func (n rawNode) has(key string) bool {
	_, ok := n[key].([]any)
	return ok
}

// attr returns the named attribute or "".
func (n rawNode) attr(name string) string {
	attrs, _ := n["$"].(map[string]string)
	return attrs[name]
}

// child returns the first occurrence of key that is an element.
func (n rawNode) child(key string) (rawNode, bool) {
	seq, _ := n[key].([]any)
	for _, v := range seq {
		if node, ok := v.(rawNode); ok {
			return node, true
		}
	}
	return nil, false
}

type xmlFrame struct {
	name string
	node rawNode
	text strings.Builder
}

func (f *xmlFrame) value() any {
	text := strings.TrimSpace(f.text.String())
	if len(f.node) == 0 {
		return text
	}
	if text != "" {
		f.node["_"] = text
	}
	return f.node
}

// decodeXMLTree converts an XML document into a rawNode keyed by the root element name.
// An empty or whitespace-only body yields an empty tree.
func decodeXMLTree(body []byte) (rawNode, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.CharsetReader = charset.NewReaderLabel

	root := rawNode{}
	var stack []*xmlFrame
	seenRoot := false

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && seenRoot {
				return nil, fmt.Errorf("malformed XML: multiple root elements (%s)", t.Name.Local)
			}
			f := &xmlFrame{name: t.Name.Local, node: rawNode{}}
			if len(t.Attr) > 0 {
				attrs := make(map[string]string, len(t.Attr))
				for _, attr := range t.Attr {
					attrs[attr.Name.Local] = attr.Value
				}
				f.node["$"] = attrs
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New("malformed XML: text outside the root element")
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)

		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				root[f.name] = f.value()
				seenRoot = true
				continue
			}
			parent := stack[len(stack)-1].node
			seq, _ := parent[f.name].([]any)
			parent[f.name] = append(seq, f.value())
		}
	}

	return root, nil
}
