// Package extractor walks a structural document and emits one CodeUnit
// per embedded code block, with a stable content hash over
// line-ending-normalized text. It never executes, evaluates, or
// syntax-checks the code it extracts.
package extractor

import (
	"github.com/chrisjgaze/bp-analyzer/internal/bpxml"
	"github.com/chrisjgaze/bp-analyzer/internal/checksum"
)

// GlobalStageID is the synthetic stage identifier (and page name) of a
// document-level Global Code unit.
const GlobalStageID = "global"

// CodeUnit is one block of embedded source code plus its identity.
// Identity is positional (document, page, stage); the SHA256 field is a
// pure function of the normalized text and is shared by byte-identical
// code wherever it appears, which is what deduplication keys on.
type CodeUnit struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"name"`
	Page         string `json:"page"`
	StageID      string `json:"stage_id"`
	StageName    string `json:"stage"`
	Language     string `json:"language"`
	Raw          string `json:"-"`
	Normalized   string `json:"-"`
	SHA256       string `json:"sha256"`
	IsGlobal     bool   `json:"is_global"`
	LineCount    int    `json:"line_count"`
}

// Extract returns the document's code units in document order: the
// Global Code unit first when present, then Code stages page by page,
// in stage order within each page. A Code stage with no code body still
// yields a unit with empty text and the hash of the empty string.
func Extract(docID, docName string, doc *bpxml.Document) []CodeUnit {
	calc := checksum.New()
	var units []CodeUnit

	if doc.GlobalCode != "" {
		units = append(units, newUnit(calc, CodeUnit{
			DocumentID:   docID,
			DocumentName: docName,
			Page:         GlobalStageID,
			StageID:      GlobalStageID,
			StageName:    "Global Code",
			Language:     doc.Language,
			IsGlobal:     true,
		}, doc.GlobalCode))
	}

	for _, page := range doc.Pages {
		for _, st := range page.Stages {
			if st.Kind != bpxml.StageCode {
				continue
			}
			name := st.Name
			if name == "" {
				name = "Unnamed Code Stage"
			}
			var lang, text string
			if st.Code != nil {
				lang = st.Code.Language
				text = st.Code.Text
			}
			units = append(units, newUnit(calc, CodeUnit{
				DocumentID:   docID,
				DocumentName: docName,
				Page:         page.Name,
				StageID:      st.ID,
				StageName:    name,
				Language:     lang,
			}, text))
		}
	}

	return units
}

func newUnit(calc checksum.SHA256, unit CodeUnit, raw string) CodeUnit {
	unit.Raw = raw
	unit.Normalized = checksum.Normalize(raw)
	unit.SHA256 = calc.Raw([]byte(unit.Normalized))
	unit.Language = bpxml.InferLanguage(unit.Language, unit.Normalized)
	unit.LineCount = countLines(unit.Normalized)
	return unit
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}
