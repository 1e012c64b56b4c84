// Package analysis runs the full per-document pipeline: structural
// parse, code-unit extraction with classification, cross-reference
// resolution, and stage statistics. Everything here is a pure function
// of one document; documents never share state, so callers may analyze
// any number of them concurrently.
package analysis

import (
	"errors"

	"github.com/chrisjgaze/bp-analyzer/internal/bpxml"
	"github.com/chrisjgaze/bp-analyzer/internal/codefmt"
	"github.com/chrisjgaze/bp-analyzer/internal/extractor"
	"github.com/chrisjgaze/bp-analyzer/internal/findings"
	"github.com/chrisjgaze/bp-analyzer/internal/stats"
	"github.com/chrisjgaze/bp-analyzer/internal/xref"
)

// ErrMissingID reports a caller contract breach: a document record with
// no identity. Data-quality problems inside the XML never surface this
// way; they resolve to empty structures instead.
var ErrMissingID = errors.New("analysis: document has no id")

// previewLimit caps table-cell previews of formatted code.
const previewLimit = 300

// Input is one source document record handed in by the storage layer.
type Input struct {
	ID      string
	Kind    string // "P" process, "O" object
	Name    string
	Version string
	XML     string
}

// Unit is a code unit enriched with its findings and display rendering.
// Display text is presentation only; the hash always covers the
// normalized raw text.
type Unit struct {
	extractor.CodeUnit
	Display      string
	Preview      string
	DisplayLines int
	Findings     []findings.Finding
}

// Result is everything derived from one document.
type Result struct {
	Input         Input
	ExportVersion string
	Units         []Unit
	Refs          []xref.CrossReference
	Stats         stats.Report
}

// Analyze derives a Result from one document. The only error is a
// contract breach (missing id); malformed XML and unclassifiable
// content are absorbed into empty or Unknown-marked output.
func Analyze(in Input) (*Result, error) {
	if in.ID == "" {
		return nil, ErrMissingID
	}

	doc := bpxml.Parse(in.XML)

	res := &Result{
		Input:         in,
		ExportVersion: doc.ExportVersion,
		Refs:          xref.Resolve(in.ID, in.Name, doc),
		Stats:         stats.Collect(doc),
	}

	for _, cu := range extractor.Extract(in.ID, in.Name, doc) {
		display := codefmt.Format(cu.Raw, cu.Language)
		res.Units = append(res.Units, Unit{
			CodeUnit:     cu,
			Display:      display,
			Preview:      codefmt.Preview(display, previewLimit),
			DisplayLines: codefmt.DisplayLines(display),
			Findings:     findings.Classify(cu.Normalized),
		})
	}

	return res, nil
}
