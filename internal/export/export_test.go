package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/extractor"
	"github.com/chrisjgaze/bp-analyzer/internal/findings"
)

func testUnits() []analysis.Unit {
	return []analysis.Unit{
		{
			CodeUnit: extractor.CodeUnit{
				DocumentName: "Orders",
				Page:         "Main Page",
				StageName:    "Fetch Rows",
				Language:     "C#",
				SHA256:       "aaaa",
			},
			Display: "var x = Fetch();",
			Findings: []findings.Finding{
				{Category: findings.CategorySQL, Snippet: "SELECT * FROM Orders", Line: 2},
			},
		},
		{
			CodeUnit: extractor.CodeUnit{
				DocumentName: "Accounts",
				Page:         "global",
				StageName:    "Global Code",
				Language:     "VB",
				SHA256:       "bbbb",
				IsGlobal:     true,
			},
			Display: "Dim shared As String",
		},
	}
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, testUnits()))

	var records []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, sc.Err())
	require.Len(t, records, 2)

	t.Run("ordered by document name", func(t *testing.T) {
		assert.Equal(t, "Accounts", records[0]["name"])
		assert.Equal(t, "Orders", records[1]["name"])
	})

	t.Run("record shape", func(t *testing.T) {
		rec := records[1]
		assert.Equal(t, "Main Page", rec["page"])
		assert.Equal(t, "Fetch Rows", rec["stage"])
		assert.Equal(t, "C#", rec["language"])
		assert.Equal(t, "aaaa", rec["sha256"])
		assert.Equal(t, false, rec["is_global"])
		assert.Equal(t, "var x = Fetch();", rec["code"])

		fs, ok := rec["findings"].([]any)
		require.True(t, ok)
		require.Len(t, fs, 1)
		f := fs[0].(map[string]any)
		assert.Equal(t, "sql", f["category"])
		assert.Equal(t, "SELECT * FROM Orders", f["snippet"])
		assert.NotContains(t, f, "line", "line numbers stay out of the jsonl shape")
	})

	t.Run("no findings serializes as empty array", func(t *testing.T) {
		fs, ok := records[0]["findings"].([]any)
		require.True(t, ok, "findings must be [] rather than null")
		assert.Empty(t, fs)
	})
}

func TestWriteJSONL_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, testUnits()))

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID  string `json:"ruleId"`
				Level   string `json:"level"`
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "bp-analyzer", run.Tool.Driver.Name)

	require.Len(t, run.Results, 1, "only units with findings produce results")
	res := run.Results[0]
	assert.Equal(t, "sql", res.RuleID)
	assert.Equal(t, "warning", res.Level)
	assert.Equal(t, "SELECT * FROM Orders", res.Message.Text)

	require.Len(t, res.Locations, 1)
	loc := res.Locations[0].PhysicalLocation
	assert.Equal(t, "bp://Orders/Main Page/Fetch Rows", loc.ArtifactLocation.URI)
	assert.Equal(t, 2, loc.Region.StartLine)

	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, "sql", run.Tool.Driver.Rules[0].ID)
}

func TestWriteSARIF_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	units := testUnits()[1:]
	require.NoError(t, WriteSARIF(&buf, units))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	runs := doc["runs"].([]any)
	require.Len(t, runs, 1)
}

func TestRuleLevel(t *testing.T) {
	assert.Equal(t, "error", ruleLevel(findings.CategoryCredential))
	assert.Equal(t, "warning", ruleLevel(findings.CategorySQL))
	assert.Equal(t, "note", ruleLevel(findings.CategoryURL))
}
