package codefmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_CSharpOneLiner(t *testing.T) {
	got := Format(`if (ok) { total = a + b; Save(total); } else { Fail(); }`, "C#")

	lines := strings.Split(got, "\n")
	require.Greater(t, len(lines), 4, "one-liner must be split across lines")
	assert.Contains(t, got, indentUnit+"total = a + b;")
	assert.Contains(t, got, indentUnit+"Save(total);")

	for _, ln := range lines {
		assert.Equal(t, strings.TrimRight(ln, " "), ln, "no trailing spaces")
	}
}

func TestFormat_CSharpPreservesStringLiterals(t *testing.T) {
	got := Format(`var q = "two  spaces   stay";`, "csharp")
	assert.Contains(t, got, `"two  spaces   stay"`)
}

func TestFormat_CSharpNestedIndent(t *testing.T) {
	got := Format("void f() { if (x) { y(); } }", "C#")
	assert.Contains(t, got, indentUnit+indentUnit+"y();")
}

func TestFormat_VBSingleLineIf(t *testing.T) {
	got := Format(`If total > 10 Then Save(total) Else Fail()`, "VB")

	want := strings.Join([]string{
		"If total > 10 Then",
		indentUnit + "Save(total)",
		"Else",
		indentUnit + "Fail()",
		"End If",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormat_VBContinuationsAndColons(t *testing.T) {
	got := Format("Dim x = 1 : Dim y = _\n    2", "vb")

	assert.Contains(t, got, "Dim x = 1")
	assert.Contains(t, got, "Dim y = 2")
	assert.NotContains(t, got, ":")
	assert.NotContains(t, got, "_\n")
}

func TestFormat_VBColonInsideStringKept(t *testing.T) {
	got := Format(`Dim msg = "a:b"`, "VB")
	assert.Contains(t, got, `"a:b"`)
}

func TestFormat_VBBlockIndent(t *testing.T) {
	got := Format("For Each r In rows\nsum = sum + r\nNext", "VB")

	want := strings.Join([]string{
		"For Each r In rows",
		indentUnit + "sum = sum + r",
		"Next",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormat_UnknownLanguageWhitespaceOnly(t *testing.T) {
	got := Format("a\n\n\n\nb\t", "")
	assert.Equal(t, "a\n\nb", got)
}

func TestFormat_Empty(t *testing.T) {
	assert.Empty(t, Format("", "VB"))
	assert.Empty(t, Format("   \r\n  ", "C#"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b", Preview("a\nb", 300))
	long := strings.Repeat("x", 400)
	got := Preview(long, 300)
	assert.Len(t, got, 303)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestDisplayLines(t *testing.T) {
	assert.Equal(t, 0, DisplayLines(""))
	assert.Equal(t, 1, DisplayLines("x"))
	assert.Equal(t, 3, DisplayLines("a\nb\nc"))
}
