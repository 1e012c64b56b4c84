// Package storage persists source documents and derived analysis
// records in SQLite. Derived tables are full-replace per run: each
// analysis drops and recreates them, so results never mix across runs.
// The source documents table is written only by ingest; analysis reads
// it and assumes nothing about how it was bootstrapped.
package storage

import (
	"context"
	"time"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/graph"
)

// Document is one source record from the documents table.
type Document struct {
	ID          string
	Kind        string // "P" process, "O" object
	Name        string
	Description string
	Version     string
	XML         string
}

// Filter narrows which source documents an analysis run covers.
type Filter struct {
	Kind     string // restrict to "P" or "O"; empty means both
	NameLike string // case-insensitive substring of the document name
}

// RunInfo summarizes one analysis run.
type RunInfo struct {
	ID             string
	CreatedAt      time.Time
	TotalProcesses int
	TotalObjects   int
	Ratio          float64
	ExportVersion  string
}

// LoggingRow is one document's logging summary as stored.
type LoggingRow struct {
	DocumentID     string
	Name           string
	TotalStages    int
	EnabledCount   int
	InhibitedCount int
	ExceptionCount int
	FullLoggingPct float64
	NoLoggingPct   float64
	ErrorOnlyPct   float64
}

// CredentialRow is one credential-component call site as stored.
type CredentialRow struct {
	DocumentName string
	Page         string
	Stage        string
}

// Store is what the pipeline and the exporters need from persistence.
type Store interface {
	Documents(ctx context.Context, f Filter) ([]Document, error)
	WriteRun(ctx context.Context, run RunInfo, results []*analysis.Result, g *graph.Graph) error

	Units(ctx context.Context) ([]analysis.Unit, error)
	Edges(ctx context.Context) ([]graph.Edge, error)
	LoggingSummaries(ctx context.Context) ([]LoggingRow, error)
	CredentialUses(ctx context.Context) ([]CredentialRow, error)
	LastRun(ctx context.Context) (RunInfo, error)

	Close() error
}
