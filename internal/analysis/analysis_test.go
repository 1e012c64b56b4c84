package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisjgaze/bp-analyzer/internal/findings"
	"github.com/chrisjgaze/bp-analyzer/internal/xref"
)

func TestAnalyze_FullDocument(t *testing.T) {
	in := Input{
		ID:   "o-1",
		Kind: "O",
		Name: "Accounts VBO",
		XML: `<object name="Accounts VBO">
			<subsheet subsheetid="s1"><name>Query</name></subsheet>
			<stage stageid="c1" name="Fetch Rows" type="Code">
				<subsheetid>s1</subsheetid>
				<code language="csharp"><![CDATA[var rows = db.Query("SELECT * FROM Accounts");]]></code>
			</stage>
			<stage stageid="a1" name="Log In" type="Action">
				<subsheetid>s1</subsheetid>
				<resource object="Login VBO" action="Do Login"/>
			</stage>
		</object>`,
	}

	res, err := Analyze(in)
	require.NoError(t, err)

	require.Len(t, res.Units, 1)
	unit := res.Units[0]
	assert.Equal(t, "Fetch Rows", unit.StageName)
	assert.Equal(t, "C#", unit.Language)
	assert.NotEmpty(t, unit.SHA256)
	assert.NotEmpty(t, unit.Display)

	var cats []string
	for _, f := range unit.Findings {
		cats = append(cats, f.Category)
	}
	assert.Contains(t, cats, findings.CategorySQL)

	require.Len(t, res.Refs, 1)
	assert.Equal(t, xref.KindObjectAction, res.Refs[0].Kind)
	assert.Equal(t, "Login VBO", res.Refs[0].Target)

	assert.Equal(t, 2, res.Stats.Logging.TotalStages)
}

func TestAnalyze_MalformedXMLAbsorbed(t *testing.T) {
	res, err := Analyze(Input{ID: "p-1", Name: "Broken", XML: "<process><stage"})
	require.NoError(t, err, "malformed input is a data-quality issue, not an error")

	assert.Empty(t, res.Units)
	assert.Empty(t, res.Refs)
	assert.Equal(t, 0, res.Stats.Logging.TotalStages)
}

func TestAnalyze_MissingIDIsContractBreach(t *testing.T) {
	_, err := Analyze(Input{Name: "No ID", XML: "<process/>"})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestAnalyze_ExportVersionCaptured(t *testing.T) {
	res, err := Analyze(Input{ID: "p-1", XML: `<process bpversion="6.10.1"/>`})
	require.NoError(t, err)
	assert.Equal(t, "6.10.1", res.ExportVersion)
}
