package ingest

import (
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgaze/bp-analyzer/internal/storage"
)

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func exportRow(id, kind, name, xml string) []string {
	row := make([]string, columnCount)
	row[colID] = id
	row[colKind] = kind
	row[colName] = name
	row[colDescription] = "exported"
	row[colVersion] = "1.0"
	row[colXML] = xml
	return row
}

func exportCSV(t *testing.T, rows ...[]string) string {
	t.Helper()
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, row := range rows {
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return sb.String()
}

func TestLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	input := exportCSV(t,
		exportRow("p-1", "P", "Main Flow", `<process name="Main Flow"/>`),
		exportRow("o-1", "O", "Accounts, Ltd VBO", `<object name="Accounts"><stage/></object>`),
	)

	n, err := Load(ctx, store, strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs, err := store.Documents(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	t.Run("fields survive quoted commas", func(t *testing.T) {
		var obj storage.Document
		for _, d := range docs {
			if d.Kind == "O" {
				obj = d
			}
		}
		assert.Equal(t, "Accounts, Ltd VBO", obj.Name)
		assert.Contains(t, obj.XML, "<stage/>")
	})
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	short := []string{"p-short", "P", "Too Few Columns"}
	noID := exportRow("", "P", "No ID", "<process/>")
	good := exportRow("p-1", "P", "Main Flow", "<process/>")

	n, err := Load(ctx, store, strings.NewReader(exportCSV(t, short, noID, good)), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoad_Batching(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := make([][]string, 7)
	for i := range rows {
		rows[i] = exportRow("p-"+string(rune('a'+i)), "P", "Proc", "<process/>")
	}

	n, err := Load(ctx, store, strings.NewReader(exportCSV(t, rows...)), Options{BatchSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	docs, err := store.Documents(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, docs, 7)
}

func TestLoad_ReplaceResetsTable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := Load(ctx, store, strings.NewReader(exportCSV(t, exportRow("p-1", "P", "Old", "<process/>"))), Options{})
	require.NoError(t, err)

	_, err = Load(ctx, store, strings.NewReader(exportCSV(t, exportRow("p-2", "P", "New", "<process/>"))), Options{Replace: true})
	require.NoError(t, err)

	docs, err := store.Documents(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "P-2", docs[0].ID, "ids are read back uppercased")
}

func TestLoad_EmptyInput(t *testing.T) {
	store := openTestStore(t)
	n, err := Load(context.Background(), store, strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
