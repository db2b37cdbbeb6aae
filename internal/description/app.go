package description

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dialproto/godial/internal/dial"
)

// Schema constants for the application-description document.
const (
	appNamespace = "urn:dial-multiscreen-org:schemas:dial"
	dialVersion  = "1.7"

	// linkRelation is the only relation the protocol defines: it points a
	// controller at the running instance's correlation token.
	linkRelation = "run"
)

// RenderAppDescription produces the application-description document for one
// app record. The <link> element appears only when the app has a pid, and the
// state element always carries the inferred state, never an empty value.
// AdditionalData entries and namespace declarations render in sorted key
// order so output is deterministic.
func RenderAppDescription(a dial.App) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "service"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: appNamespace},
			{Name: xml.Name{Local: "dialVer"}, Value: dialVersion},
		},
	}
	for _, prefix := range sortedKeys(a.Namespaces) {
		root.Attr = append(root.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + prefix},
			Value: a.Namespaces[prefix],
		})
	}
	if err := enc.EncodeToken(root); err != nil {
		return "", &ParseError{Doc: "app description", Err: err}
	}

	if err := encodeTextElement(enc, "name", a.Name); err != nil {
		return "", err
	}

	options := xml.StartElement{
		Name: xml.Name{Local: "options"},
		Attr: []xml.Attr{{
			Name:  xml.Name{Local: "allowStop"},
			Value: strconv.FormatBool(a.AllowStop),
		}},
	}
	if err := encodeEmptyElement(enc, options); err != nil {
		return "", err
	}

	if err := encodeTextElement(enc, "state", string(a.InferredState())); err != nil {
		return "", err
	}

	if a.Pid != "" {
		link := xml.StartElement{
			Name: xml.Name{Local: "link"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "rel"}, Value: linkRelation},
				{Name: xml.Name{Local: "href"}, Value: a.Pid},
			},
		}
		if err := encodeEmptyElement(enc, link); err != nil {
			return "", err
		}
	}

	if len(a.AdditionalData) > 0 {
		data := xml.StartElement{Name: xml.Name{Local: "additionalData"}}
		if err := enc.EncodeToken(data); err != nil {
			return "", &ParseError{Doc: "app description", Err: err}
		}
		for _, key := range sortedKeys(a.AdditionalData) {
			if err := encodeTextElement(enc, key, a.AdditionalData[key]); err != nil {
				return "", err
			}
		}
		if err := enc.EncodeToken(data.End()); err != nil {
			return "", &ParseError{Doc: "app description", Err: err}
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return "", &ParseError{Doc: "app description", Err: err}
	}
	if err := enc.Flush(); err != nil {
		return "", &ParseError{Doc: "app description", Err: err}
	}
	return buf.String(), nil
}

// ParseAppDescription recovers the app fields from an application-description
// document. Namespace prefixes on element and attribute names are stripped,
// so <dial:state> and <state> parse to the same field. The link target is
// stored as the pid only for the "run" relation.
func ParseAppDescription(text string) (dial.App, error) {
	dec := xml.NewDecoder(strings.NewReader(text))

	var app dial.App
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dial.App{}, &ParseError{Doc: "app description", Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			if localName(start.Name) != "service" {
				return dial.App{}, &ParseError{
					Doc: "app description",
					Err: fmt.Errorf("unexpected root element <%s>", start.Name.Local),
				}
			}
			sawRoot = true
			app.Namespaces = namespaceDeclarations(start.Attr)
			continue
		}

		switch localName(start.Name) {
		case "name":
			value, err := readText(dec, start)
			if err != nil {
				return dial.App{}, err
			}
			app.Name = value
		case "state":
			value, err := readText(dec, start)
			if err != nil {
				return dial.App{}, err
			}
			app.State = dial.AppState(value)
		case "options":
			if v, ok := findAttr(start.Attr, "allowStop"); ok {
				app.AllowStop, _ = strconv.ParseBool(v)
			}
			if err := dec.Skip(); err != nil {
				return dial.App{}, &ParseError{Doc: "app description", Err: err}
			}
		case "link":
			rel, _ := findAttr(start.Attr, "rel")
			href, _ := findAttr(start.Attr, "href")
			if rel == linkRelation {
				app.Pid = href
			}
			if err := dec.Skip(); err != nil {
				return dial.App{}, &ParseError{Doc: "app description", Err: err}
			}
		case "additionalData":
			data, err := readAdditionalData(dec)
			if err != nil {
				return dial.App{}, err
			}
			app.AdditionalData = data
		default:
			if err := dec.Skip(); err != nil {
				return dial.App{}, &ParseError{Doc: "app description", Err: err}
			}
		}
	}

	if !sawRoot {
		return dial.App{}, &ParseError{
			Doc: "app description",
			Err: fmt.Errorf("document has no <service> element"),
		}
	}
	return app, nil
}

// readAdditionalData collects one map entry per child element, keyed by the
// prefix-stripped local name.
func readAdditionalData(dec *xml.Decoder) (map[string]string, error) {
	data := make(map[string]string)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Doc: "app description", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			value, err := readText(dec, t)
			if err != nil {
				return nil, err
			}
			data[localName(t.Name)] = value
		case xml.EndElement:
			return data, nil
		}
	}
}

// readText consumes the element opened by start and returns its character
// content, ignoring nested markup.
func readText(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", &ParseError{Doc: "app description", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// localName strips any namespace qualification from an XML name. The decoder
// resolves declared prefixes into Name.Space already; names with undeclared
// prefixes keep the prefix in Local, so split on ":" as well.
func localName(n xml.Name) string {
	if i := strings.LastIndex(n.Local, ":"); i >= 0 {
		return n.Local[i+1:]
	}
	return n.Local
}

// findAttr looks up an attribute by prefix-stripped local name.
func findAttr(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if localName(a.Name) == name {
			return a.Value, true
		}
	}
	return "", false
}

// namespaceDeclarations extracts prefix→URI pairs from xmlns attributes on
// the root element. The default xmlns (the DIAL schema itself) is not kept.
func namespaceDeclarations(attrs []xml.Attr) map[string]string {
	var ns map[string]string
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && strings.HasPrefix(a.Name.Local, "xmlns:"):
			prefix = strings.TrimPrefix(a.Name.Local, "xmlns:")
		default:
			continue
		}
		if ns == nil {
			ns = make(map[string]string)
		}
		ns[prefix] = a.Value
	}
	return ns
}

func encodeTextElement(enc *xml.Encoder, name, value string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeElement(value, start); err != nil {
		return &ParseError{Doc: "app description", Err: err}
	}
	return nil
}

func encodeEmptyElement(enc *xml.Encoder, start xml.StartElement) error {
	if err := enc.EncodeToken(start); err != nil {
		return &ParseError{Doc: "app description", Err: err}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return &ParseError{Doc: "app description", Err: err}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
