// Package pipeline orchestrates one analysis run: read source
// documents, analyze each one independently on a bounded worker pool,
// aggregate the reference graph, and full-replace the derived tables.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/graph"
	"github.com/chrisjgaze/bp-analyzer/internal/storage"
)

// ErrNilStore reports a caller contract breach.
var ErrNilStore = errors.New("pipeline: nil store")

// DefaultWorkers bounds the per-document worker pool when the caller
// does not.
const DefaultWorkers = 4

// Options controls one run.
type Options struct {
	// OnlyKind restricts analysis to "P" or "O"; empty analyzes both.
	OnlyKind string
	// NameLike keeps only documents whose name contains the fragment,
	// case-insensitively.
	NameLike string
	// Workers bounds concurrent document analysis.
	Workers int
}

// Summary is what a completed run reports back.
type Summary struct {
	Run       storage.RunInfo
	Documents int
	Units     int
	Findings  int
	Refs      int
	Skipped   int // documents rejected for contract breaches
}

// Run executes one full analysis over the source documents. Documents
// are independent, so they are analyzed concurrently; a document that
// breaches the input contract is skipped and counted, never fatal to
// the batch.
func Run(ctx context.Context, store storage.Store, opts Options, logger hclog.Logger) (Summary, error) {
	if store == nil {
		return Summary{}, ErrNilStore
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	docs, err := store.Documents(ctx, storage.Filter{Kind: opts.OnlyKind, NameLike: opts.NameLike})
	if err != nil {
		return Summary{}, err
	}
	logger.Info("starting analysis run", "documents", len(docs), "workers", opts.Workers)

	var (
		mu      sync.Mutex
		results []*analysis.Result
		skipped int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)

	for _, doc := range docs {
		doc := doc
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := analysis.Analyze(analysis.Input{
				ID:      doc.ID,
				Kind:    doc.Kind,
				Name:    doc.Name,
				Version: doc.Version,
				XML:     doc.XML,
			})
			if err != nil {
				logger.Warn("skipping document", "name", doc.Name, "error", err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Summary{}, err
	}

	// Collection order is nondeterministic under the pool; restore
	// document order before writing.
	sort.Slice(results, func(i, j int) bool { return results[i].Input.ID < results[j].Input.ID })

	run := storage.RunInfo{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}

	g := graph.New()
	for _, doc := range docs {
		g.AddDocument(doc.ID, doc.Name, doc.Kind)
	}

	summary := Summary{Documents: len(results), Skipped: skipped}
	for _, res := range results {
		g.Link(res.Refs)
		summary.Units += len(res.Units)
		summary.Refs += len(res.Refs)
		for _, u := range res.Units {
			summary.Findings += len(u.Findings)
		}
		if run.ExportVersion == "" {
			run.ExportVersion = res.ExportVersion
		}
		switch res.Input.Kind {
		case "P":
			run.TotalProcesses++
		case "O":
			run.TotalObjects++
		}
	}
	if run.TotalObjects > 0 {
		run.Ratio = float64(run.TotalProcesses) / float64(run.TotalObjects)
	}
	summary.Run = run

	if err := store.WriteRun(ctx, run, results, g); err != nil {
		return Summary{}, err
	}

	logger.Info("analysis run complete",
		"run_id", run.ID,
		"documents", summary.Documents,
		"units", summary.Units,
		"findings", summary.Findings,
		"refs", summary.Refs,
		"skipped", summary.Skipped)
	return summary, nil
}
