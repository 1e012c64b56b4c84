// Package ingest bootstraps the source documents table from an
// "Exported Processes" CSV. It is deliberately separate from the
// analysis pipeline, which only ever reads the table ingest writes.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/chrisjgaze/bp-analyzer/internal/storage"
)

// Export CSV column positions. The file is headerless with a fixed
// 19-column layout.
const (
	colID = iota
	colKind
	colName
	colDescription
	colVersion
	colCreateDate
	colCreatedBy
	colModifiedDate
	colModifiedBy
	colAttributeID
	colCompressedXML
	colXML
	columnCount = 19
)

// DefaultBatchSize is how many rows go into one insert transaction.
const DefaultBatchSize = 500

// Options controls a CSV load.
type Options struct {
	BatchSize int
	Replace   bool // drop and recreate the documents table first
}

// LoadFile reads an export CSV from disk into the documents table and
// returns the number of rows loaded.
func LoadFile(ctx context.Context, store *storage.SQLiteStore, path string, opts Options, logger hclog.Logger) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	n, err := Load(ctx, store, f, opts)
	if err != nil {
		return n, err
	}
	logger.Info("loaded export csv", "path", path, "rows", n)
	return n, nil
}

// Load streams CSV rows into the documents table in batches.
func Load(ctx context.Context, store *storage.SQLiteStore, r io.Reader, opts Options) (int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	if err := store.EnsureSourceSchema(ctx, opts.Replace); err != nil {
		return 0, fmt.Errorf("prepare documents table: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var batch []storage.Document
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.InsertDocuments(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("read csv: %w", err)
		}
		if len(record) <= colXML || record[colID] == "" {
			// Short or id-less rows are data-quality noise, not errors.
			continue
		}

		batch = append(batch, storage.Document{
			ID:          record[colID],
			Kind:        record[colKind],
			Name:        record[colName],
			Description: record[colDescription],
			Version:     record[colVersion],
			XML:         record[colXML],
		})

		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	return total, flush()
}
