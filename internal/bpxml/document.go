// Package bpxml turns raw automation-export XML into a defensive
// in-memory structural document. Exports differ across product
// versions and are not fully specified, so the parser is a total
// function: any input, including empty or malformed XML, produces a
// usable (possibly empty) Document.
package bpxml

// StageKind identifies the closed set of stage variants the analyzer
// understands. Anything else maps to StageUnknown and is retained for
// counting but carries no payload.
type StageKind string

const (
	StageCode       StageKind = "Code"
	StageAction     StageKind = "Action"
	StageSubProcess StageKind = "SubProcess"
	StageDecision   StageKind = "Decision"
	StageData       StageKind = "Data"
	StageCollection StageKind = "Collection"
	StageUnknown    StageKind = "Unknown"
)

// CodeBlock is the payload of a Code stage: the embedded source text
// and its best-effort language tag.
type CodeBlock struct {
	Language string
	Text     string
}

// ProcessCall is the payload of a SubProcess stage: the literal process
// id written in the export, uppercased for stable comparison.
type ProcessCall struct {
	ProcessID string
}

// ResourceRef is an object/action attribution. Action stages use it as
// their call target; other stage kinds may carry one too (credential
// components attach to arbitrary stages).
type ResourceRef struct {
	Object string
	Action string
}

// Stage is a tagged variant: Kind selects which payload pointer, if
// any, is populated. TypeMarker preserves the raw type attribute so
// Unknown stages still contribute to per-type statistics.
type Stage struct {
	ID           string
	Name         string
	Kind         StageKind
	TypeMarker   string
	LogInhibited bool

	Code     *CodeBlock
	Call     *ProcessCall
	Resource *ResourceRef
}

// Page is one subsheet of the document, holding its stages in export
// order. The implicit main page has an empty ID.
type Page struct {
	ID     string
	Name   string
	Stages []*Stage
}

// Document is the structural view of one exported process or object.
type Document struct {
	Name          string
	ExportVersion string
	Language      string
	GlobalCode    string
	Pages         []*Page
}

// Stages returns every stage across all pages in document order.
func (d *Document) Stages() []*Stage {
	var out []*Stage
	for _, p := range d.Pages {
		out = append(out, p.Stages...)
	}
	return out
}
