// Package codefmt reformats embedded code for report display. Exports
// frequently jam whole routines onto one line; these heuristics split
// and re-indent them well enough to read. Display formatting is
// presentation only and never feeds content hashing.
package codefmt

import (
	"regexp"
	"strings"

	"github.com/chrisjgaze/bp-analyzer/internal/bpxml"
	"github.com/chrisjgaze/bp-analyzer/internal/checksum"
)

const indentUnit = "    "

// Format pretty-prints code for display according to its language.
// Unknown languages get conservative whitespace cleanup only.
func Format(code, language string) string {
	code = checksum.Normalize(code)
	if code == "" {
		return ""
	}

	switch bpxml.NormalizeLanguage(language) {
	case "C#":
		return formatCSharp(code)
	case "VB":
		return formatVB(code)
	}
	return normalizeWhitespace(code)
}

// Preview flattens formatted code into a single capped line for table
// cells.
func Preview(code string, limit int) string {
	flat := strings.ReplaceAll(code, "\n", " ")
	if len(flat) <= limit {
		return flat
	}
	return flat[:limit] + "..."
}

// DisplayLines counts lines exactly as rendered, with no trimming or
// collapsing.
func DisplayLines(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, "\n") + 1
}

// normalizeWhitespace expands tabs, strips trailing space per line, and
// collapses blank-line runs to a single blank.
func normalizeWhitespace(code string) string {
	lines := strings.Split(strings.ReplaceAll(code, "\t", indentUnit), "\n")
	var out []string
	blanks := 0
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			blanks++
			if blanks <= 1 {
				out = append(out, "")
			}
			continue
		}
		blanks = 0
		out = append(out, strings.TrimRight(ln, " \t"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

var multiBlankRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(s string) string {
	return strings.TrimSpace(multiBlankRe.ReplaceAllString(s, "\n\n"))
}
