package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XMP namespaces used by sidecar files.
const (
	NSRDF       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSMeta      = "adobe:ns:meta/"
	NSExif      = "http://ns.adobe.com/exif/1.0/"
	NSXMP       = "http://ns.adobe.com/xap/1.0/"
	NSPhotoshop = "http://ns.adobe.com/photoshop/1.0/"

	nsXML = "http://www.w3.org/XML/1998/namespace"
)

// Properties holds the simple-valued XMP properties of a document, keyed by
// namespace URI and local name.
type Properties map[xml.Name]string

// Get returns the value of a property.
func (p Properties) Get(space, local string) (string, bool) {
	v, ok := p[xml.Name{Space: space, Local: local}]
	return v, ok
}

// set keeps the first value seen for a name.
func (p Properties) set(name xml.Name, value string) {
	if _, ok := p[name]; ok {
		return
	}
	p[name] = value
}

type rdfFrame struct {
	name     xml.Name
	text     strings.Builder
	children bool
	item     string // first rdf:li value inside an rdf:Seq/Alt/Bag
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadProperties scans an XMP document. Properties may be written as
// attributes of rdf:Description or as child elements; the value of a
// container property (rdf:Seq, rdf:Alt, rdf:Bag) is its first item.
func ReadProperties(r io.Reader) (Properties, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := xml.NewDecoder(bytes.NewReader(data))
	props := make(Properties)
	var stack []*rdfFrame
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if n := len(stack); n > 0 {
				stack[n-1].children = true
			}
			for _, attr := range t.Attr {
				if isProperty(attr.Name) {
					props.set(attr.Name, strings.TrimSpace(attr.Value))
				}
			}
			stack = append(stack, &rdfFrame{name: t.Name})

		case xml.CharData:
			if n := len(stack); n > 0 {
				stack[n-1].text.Write(t)
			}

		case xml.EndElement:
			n := len(stack)
			if n == 0 {
				return nil, fmt.Errorf("unexpected end element %s", t.Name.Local)
			}
			f := stack[n-1]
			stack = stack[:n-1]
			value := strings.TrimSpace(f.text.String())

			switch {
			case f.name.Space == NSRDF && f.name.Local == "li":
				if value != "" {
					liftItem(stack, value)
				}
			case !isProperty(f.name):
			case !f.children && value != "":
				props.set(f.name, value)
			case f.item != "":
				props.set(f.name, f.item)
			}
		}
	}

	if !sawRoot {
		return nil, errors.New("no root element")
	}
	return props, nil
}

// liftItem records an rdf:li value on the nearest enclosing property.
func liftItem(stack []*rdfFrame, value string) {
	for i := len(stack) - 1; i >= 0; i-- {
		if isProperty(stack[i].name) {
			if stack[i].item == "" {
				stack[i].item = value
			}
			return
		}
	}
}

func isProperty(name xml.Name) bool {
	switch name.Space {
	case "", "xmlns", nsXML, NSRDF, NSMeta:
		return false
	}
	return true
}
