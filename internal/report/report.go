// Package report renders the analysis results of the latest run as a
// single self-contained HTML file. The report is presentation only:
// nothing here feeds back into storage or the machine-readable exports.
package report

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/graph"
	"github.com/chrisjgaze/bp-analyzer/internal/storage"
	"github.com/chrisjgaze/bp-analyzer/internal/xref"
)

//go:embed templates/report.html
var templates embed.FS

// Data is everything the report template renders.
type Data struct {
	Customer     string
	GeneratedAt  time.Time
	Run          storage.RunInfo
	ProcessCalls []graph.Edge
	ObjectUsage  []graph.Edge
	Logging      []storage.LoggingRow
	Credentials  []storage.CredentialRow
	Units        []analysis.Unit
}

// Title is the report page title.
func (d Data) Title() string {
	if d.Customer == "" {
		return "Automation Analysis Report"
	}
	return d.Customer + " — Automation Analysis Report"
}

// TotalFindings counts findings across all units.
func (d Data) TotalFindings() int {
	n := 0
	for _, u := range d.Units {
		n += len(u.Findings)
	}
	return n
}

// Generate reads the latest run from the store and writes the HTML
// report.
func Generate(ctx context.Context, store storage.Store, customer string, w io.Writer) error {
	data := Data{Customer: customer, GeneratedAt: time.Now()}

	var err error
	if data.Run, err = store.LastRun(ctx); err != nil {
		return fmt.Errorf("load run summary: %w", err)
	}
	if data.Units, err = store.Units(ctx); err != nil {
		return fmt.Errorf("load code units: %w", err)
	}
	edges, err := store.Edges(ctx)
	if err != nil {
		return fmt.Errorf("load call edges: %w", err)
	}
	for _, e := range edges {
		switch e.Kind {
		case xref.KindSubProcess:
			data.ProcessCalls = append(data.ProcessCalls, e)
		case xref.KindObjectAction:
			data.ObjectUsage = append(data.ObjectUsage, e)
		}
	}
	if data.Logging, err = store.LoggingSummaries(ctx); err != nil {
		return fmt.Errorf("load logging summaries: %w", err)
	}
	if data.Credentials, err = store.CredentialUses(ctx); err != nil {
		return fmt.Errorf("load credential usage: %w", err)
	}

	return Render(w, data)
}

// Render writes the HTML report for already-assembled data.
func Render(w io.Writer, data Data) error {
	tmpl, err := template.ParseFS(templates, "templates/report.html")
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
