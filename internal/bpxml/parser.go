package bpxml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Tag spellings observed across export versions. Exports differ, so
// every lookup is a best-effort scan over candidates.
var (
	codeTextTags   = []string{"code", "codetext", "script", "text", "body", "vb", "csharp"}
	globalCodeTags = []string{"globalcode", "global", "globalcodesection", "globalcodeinfo"}
)

// MainPageName is the synthetic page holding stages that carry no
// subsheet reference.
const MainPageName = "Main Page"

// Parse builds a Document from raw export XML. It is a total function:
// empty, truncated, or non-well-formed input yields a Document with
// zero pages rather than an error, so a batch caller can keep going.
func Parse(raw string) *Document {
	doc := &Document{}

	root, err := decodeTree(raw)
	if err != nil || root == nil {
		return doc
	}

	doc.Name = root.attr("name")
	doc.ExportVersion = root.attr("bpversion")
	doc.Language = NormalizeLanguage(findLanguageTag(root))
	doc.GlobalCode = firstCandidateText(root, globalCodeTags)

	main := &Page{Name: MainPageName}
	var sheets []*Page
	sheetByID := map[string]*Page{}

	root.walk("subsheet", func(el *element) {
		p := &Page{
			ID:   el.attr("subsheetid"),
			Name: childText(el, "name"),
		}
		if p.Name == "" {
			p.Name = "Unnamed Page"
		}
		sheets = append(sheets, p)
		if p.ID != "" {
			sheetByID[p.ID] = p
		}
	})

	root.walk("stage", func(el *element) {
		st := parseStage(root, el)
		page := main
		if id := childText(el, "subsheetid"); id != "" {
			if p, ok := sheetByID[id]; ok {
				page = p
			}
		}
		page.Stages = append(page.Stages, st)
	})

	if len(main.Stages) > 0 {
		doc.Pages = append(doc.Pages, main)
	}
	doc.Pages = append(doc.Pages, sheets...)

	return doc
}

func parseStage(root, el *element) *Stage {
	st := &Stage{
		ID:           el.attr("stageid"),
		Name:         el.attr("name"),
		TypeMarker:   el.attr("type"),
		LogInhibited: el.find("loginhibit") != nil,
	}

	if r := el.find("resource"); r != nil {
		if obj, act := r.attr("object"), r.attr("action"); obj != "" || act != "" {
			st.Resource = &ResourceRef{Object: obj, Action: act}
		}
	}

	switch st.TypeMarker {
	case "Code":
		st.Kind = StageCode
		st.Code = &CodeBlock{
			Language: stageLanguage(root, el),
			Text:     firstCandidateText(el, codeTextTags),
		}
	case "Action":
		st.Kind = StageAction
	case "Process":
		st.Kind = StageSubProcess
		st.Call = &ProcessCall{ProcessID: strings.ToUpper(childText(el, "processid"))}
	case "Decision":
		st.Kind = StageDecision
	case "Data":
		st.Kind = StageData
	case "Collection":
		st.Kind = StageCollection
	default:
		st.Kind = StageUnknown
	}

	return st
}

// element is a minimal generic XML tree. The export schema is not
// specified tightly enough for typed unmarshalling, so traversal stays
// duck-typed over names and attributes.
type element struct {
	name     string
	attrs    map[string]string
	text     string
	children []*element
}

func decodeTree(raw string) (*element, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))

	var root *element
	var stack []*element
	var texts []*strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: strings.ToLower(t.Name.Local), attrs: map[string]string{}}
			for _, a := range t.Attr {
				el.attrs[strings.ToLower(a.Name.Local)] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return root, nil
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
			texts = append(texts, &strings.Builder{})
		case xml.EndElement:
			if len(stack) == 0 {
				return root, nil
			}
			el := stack[len(stack)-1]
			el.text = texts[len(texts)-1].String()
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}
		}
	}

	if len(stack) > 0 {
		// Truncated input: the document is not well-formed.
		return nil, io.ErrUnexpectedEOF
	}
	return root, nil
}

func (e *element) attr(name string) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.attrs[name])
}

// find returns the first descendant with the given name, depth-first in
// document order, or nil.
func (e *element) find(name string) *element {
	if e == nil {
		return nil
	}
	for _, c := range e.children {
		if c.name == name {
			return c
		}
		if hit := c.find(name); hit != nil {
			return hit
		}
	}
	return nil
}

// walk visits every descendant with the given name in document order.
func (e *element) walk(name string, fn func(*element)) {
	if e == nil {
		return
	}
	for _, c := range e.children {
		if c.name == name {
			fn(c)
		}
		c.walk(name, fn)
	}
}

// childText returns the trimmed text of the first descendant with the
// given name. Missing or whitespace-only nodes resolve to "".
func childText(e *element, name string) string {
	return strings.TrimSpace(e.find(name).textOf())
}

func (e *element) textOf() string {
	if e == nil {
		return ""
	}
	return e.text
}

// firstCandidateText scans candidate tag spellings in priority order
// and returns the first non-blank text found. The text itself is
// returned untrimmed so the original formatting survives for audit.
func firstCandidateText(e *element, candidates []string) string {
	for _, tag := range candidates {
		if n := e.find(tag); n != nil && strings.TrimSpace(n.text) != "" {
			return n.text
		}
	}
	return ""
}
