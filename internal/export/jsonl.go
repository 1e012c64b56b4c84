// Package export serializes analyzed code units into machine-readable
// formats: JSON Lines for downstream tooling and SARIF 2.1.0 for code
// scanning platforms. Both formats carry the same units; neither leaks
// presentation-only fields beyond the display-formatted code text.
package export

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
)

type jsonlFinding struct {
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
}

// jsonlRecord pins the external record shape. Code is the
// display-formatted text; the hash still covers the normalized raw
// text, so consumers must not re-hash the code field.
type jsonlRecord struct {
	Name     string         `json:"name"`
	Page     string         `json:"page"`
	Stage    string         `json:"stage"`
	Language string         `json:"language"`
	SHA256   string         `json:"sha256"`
	IsGlobal bool           `json:"is_global"`
	Code     string         `json:"code"`
	Findings []jsonlFinding `json:"findings"`
}

// WriteJSONL writes one JSON object per line for every unit, ordered by
// document name, page, then stage name.
func WriteJSONL(w io.Writer, units []analysis.Unit) error {
	sorted := make([]analysis.Unit, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DocumentName != b.DocumentName {
			return a.DocumentName < b.DocumentName
		}
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.StageName < b.StageName
	})

	enc := json.NewEncoder(w)
	for _, u := range sorted {
		rec := jsonlRecord{
			Name:     u.DocumentName,
			Page:     u.Page,
			Stage:    u.StageName,
			Language: u.Language,
			SHA256:   u.SHA256,
			IsGlobal: u.IsGlobal,
			Code:     u.Display,
			Findings: make([]jsonlFinding, 0, len(u.Findings)),
		}
		for _, f := range u.Findings {
			rec.Findings = append(rec.Findings, jsonlFinding{Category: f.Category, Snippet: f.Snippet})
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
