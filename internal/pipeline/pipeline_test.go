package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/graph"
	"github.com/chrisjgaze/bp-analyzer/internal/storage"
)

// fakeStore keeps everything in memory so pipeline behavior can be
// tested without a database.
type fakeStore struct {
	mu      sync.Mutex
	docs    []storage.Document
	written []*analysis.Result
	run     storage.RunInfo
	graph   *graph.Graph
	writes  int
}

func (f *fakeStore) Documents(_ context.Context, filter storage.Filter) ([]storage.Document, error) {
	var out []storage.Document
	for _, d := range f.docs {
		if filter.Kind != "" && d.Kind != filter.Kind {
			continue
		}
		if filter.NameLike != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.NameLike)) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) WriteRun(_ context.Context, run storage.RunInfo, results []*analysis.Result, g *graph.Graph) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = results
	f.run = run
	f.graph = g
	f.writes++
	return nil
}

func (f *fakeStore) Units(context.Context) ([]analysis.Unit, error)          { return nil, nil }
func (f *fakeStore) Edges(context.Context) ([]graph.Edge, error)             { return nil, nil }
func (f *fakeStore) LoggingSummaries(context.Context) ([]storage.LoggingRow, error) {
	return nil, nil
}
func (f *fakeStore) CredentialUses(context.Context) ([]storage.CredentialRow, error) {
	return nil, nil
}
func (f *fakeStore) LastRun(context.Context) (storage.RunInfo, error) { return f.run, nil }
func (f *fakeStore) Close() error                                     { return nil }

var testLogger = hclog.NewNullLogger()

func testDocs() []storage.Document {
	return []storage.Document{
		{ID: "P-1", Kind: "P", Name: "Main Flow", XML: `<process name="Main Flow" bpversion="6.10">
			<stage stageid="1" name="Calculate Totals" type="Process"><processid>p-2</processid></stage>
		</process>`},
		{ID: "P-2", Kind: "P", Name: "Calculate Totals", XML: `<process name="Calculate Totals"/>`},
		{ID: "O-1", Kind: "O", Name: "Accounts VBO", XML: `<object name="Accounts VBO">
			<stage stageid="c1" name="Fetch" type="Code"><code>SELECT * FROM Accounts</code></stage>
		</object>`},
		{ID: "", Kind: "P", Name: "Broken Record", XML: `<process/>`},
	}
}

func TestRun_FullBatch(t *testing.T) {
	store := &fakeStore{docs: testDocs()}

	sum, err := Run(context.Background(), store, Options{Workers: 2}, testLogger)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Documents)
	assert.Equal(t, 1, sum.Skipped, "id-less record is skipped, not fatal")
	assert.Equal(t, 1, sum.Units)
	assert.GreaterOrEqual(t, sum.Findings, 1)
	assert.Equal(t, 1, sum.Refs)

	assert.Equal(t, 2, sum.Run.TotalProcesses)
	assert.Equal(t, 1, sum.Run.TotalObjects)
	assert.InDelta(t, 2.0, sum.Run.Ratio, 0.001)
	assert.Equal(t, "6.10", sum.Run.ExportVersion)
	assert.NotEmpty(t, sum.Run.ID)

	require.Equal(t, 1, store.writes)
	require.Len(t, store.written, 3)

	t.Run("results are written in document id order", func(t *testing.T) {
		assert.Equal(t, "O-1", store.written[0].Input.ID)
		assert.Equal(t, "P-1", store.written[1].Input.ID)
		assert.Equal(t, "P-2", store.written[2].Input.ID)
	})

	t.Run("graph resolves the subprocess call", func(t *testing.T) {
		require.NotNil(t, store.graph)
		edges := store.graph.Edges()
		require.Len(t, edges, 1)
		assert.Equal(t, "P-2", edges[0].ToID)
		assert.Equal(t, "Calculate Totals", edges[0].ToName)
	})
}

func TestRun_Filters(t *testing.T) {
	t.Run("kind", func(t *testing.T) {
		store := &fakeStore{docs: testDocs()}
		sum, err := Run(context.Background(), store, Options{OnlyKind: "O"}, testLogger)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Documents)
		assert.Equal(t, 1, sum.Run.TotalObjects)
		assert.Zero(t, sum.Run.TotalProcesses)
	})

	t.Run("name fragment", func(t *testing.T) {
		store := &fakeStore{docs: testDocs()}
		sum, err := Run(context.Background(), store, Options{NameLike: "totals"}, testLogger)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Documents)
	})
}

func TestRun_NilStore(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{}, testLogger)
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestRun_EmptySourceTable(t *testing.T) {
	store := &fakeStore{}
	sum, err := Run(context.Background(), store, Options{}, testLogger)
	require.NoError(t, err)
	assert.Zero(t, sum.Documents)
	assert.Equal(t, 1, store.writes, "an empty run still replaces derived tables")
}
