package codefmt

import (
	"regexp"
	"strings"
)

// Statement keywords exports jam together onto single lines. Order
// matters only in that longer spellings must be probed before their
// prefixes.
var vbStatementKeywords = []string{
	"dim ", "set ", "const ",
	"if ", "elseif ", "else",
	"end if", "select case", "case ", "end select",
	"try", "catch ", "finally", "end try",
	"for each ", "for ", "while ", "do ", "loop", "next",
	"return", "exit sub", "exit function", "exit for", "exit while",
}

var (
	vbContinuationRe = regexp.MustCompile(`\s+_\s*$`)
	vbIfThenElseRe   = regexp.MustCompile(`(?i)^if\s+(.*?)\s+then\s+(.*?)\s+else\s+(.*)$`)
	vbIfThenRe       = regexp.MustCompile(`(?i)^if\s+(.*?)\s+then\s+(.+)$`)
)

var (
	vbBlockEnders = []string{
		"end if", "end sub", "end function", "end select", "end try",
		"next", "loop", "wend", "end while", "end with",
	}
	vbBlockStarters = []string{
		"if ", "select case", "try", "for ", "while ", "with ", "do ", "sub ", "function ",
	}
	vbBlockMiders = []string{"else", "elseif", "case ", "catch", "finally"}
)

// formatVB makes jammed VB readable: joins line continuations, splits
// statement separators and mid-line statements, expands single-line If
// blocks, then indents by block keywords. Heuristic, not a VB parse.
func formatVB(code string) string {
	code = splitVBOneLiners(code)
	if code == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(code, "\t", indentUnit), "\n")
	indent := 0
	var out []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			out = append(out, "")
			continue
		}
		low := strings.ToLower(line)

		if hasAnyPrefix(low, vbBlockEnders) && indent > 0 {
			indent--
		}

		if hasAnyPrefix(low, vbBlockMiders) {
			if indent > 0 {
				indent--
			}
			out = append(out, strings.Repeat(indentUnit, indent)+line)
			indent++
			continue
		}

		out = append(out, strings.Repeat(indentUnit, indent)+line)

		if hasAnyPrefix(low, vbBlockStarters) {
			// An "If ... Then x" one-liner opens no block; only a bare
			// trailing Then does.
			if strings.HasPrefix(low, "if ") && !strings.HasSuffix(low, "then") {
				continue
			}
			indent++
		}
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func splitVBOneLiners(code string) string {
	s := joinVBContinuations(code)

	var split []string
	for _, raw := range strings.Split(s, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			split = append(split, "")
			continue
		}
		split = append(split, splitColonsOutsideStrings(raw)...)
	}

	// Expand single-line If blocks before mid-line splitting so the
	// Else branch stays attached to its If.
	var expanded []string
	for _, raw := range split {
		t := strings.TrimSpace(raw)
		if t == "" {
			expanded = append(expanded, "")
			continue
		}
		expanded = append(expanded, expandSingleLineIf(t)...)
	}

	var out []string
	for _, raw := range expanded {
		t := strings.TrimSpace(raw)
		if t == "" {
			out = append(out, "")
			continue
		}
		out = append(out, splitMidlineVBStatements(t)...)
	}

	return collapseBlankRuns(strings.Join(out, "\n"))
}

// joinVBContinuations merges " _" continuation lines into single
// statements.
func joinVBContinuations(code string) string {
	var joined []string
	buf := ""
	for _, raw := range strings.Split(code, "\n") {
		line := strings.TrimRight(raw, " \t")
		if buf != "" {
			buf += strings.TrimLeft(line, " \t")
		} else {
			buf = line
		}

		if vbContinuationRe.MatchString(buf) {
			buf = vbContinuationRe.ReplaceAllString(buf, " ")
			continue
		}
		joined = append(joined, buf)
		buf = ""
	}
	if buf != "" {
		joined = append(joined, buf)
	}
	return strings.Join(joined, "\n")
}

// splitColonsOutsideStrings splits ':' statement separators, honoring
// VB's doubled-quote escaping inside string literals.
func splitColonsOutsideStrings(line string) []string {
	var parts []string
	var cur strings.Builder
	inStr := false

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if ch == '"' {
			if inStr && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteString(`""`)
				i++
				continue
			}
			inStr = !inStr
			cur.WriteByte(ch)
			continue
		}

		if ch == ':' && !inStr {
			if p := strings.TrimSpace(cur.String()); p != "" {
				parts = append(parts, p)
			}
			cur.Reset()
			for i+1 < len(line) && (line[i+1] == ' ' || line[i+1] == '\t') {
				i++
			}
			continue
		}

		cur.WriteByte(ch)
	}

	if p := strings.TrimSpace(cur.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// splitMidlineVBStatements breaks a line at statement keyword
// boundaries when the export has jammed several statements together.
func splitMidlineVBStatements(line string) []string {
	var parts []string
	var cur strings.Builder
	inStr := false
	low := strings.ToLower(line)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		if ch == '"' {
			if inStr && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteString(`""`)
				i++
				continue
			}
			inStr = !inStr
			cur.WriteByte(ch)
			continue
		}

		if !inStr && cur.Len() > 0 {
			for _, kw := range vbStatementKeywords {
				if strings.HasPrefix(low[i:], kw) {
					if p := strings.TrimSpace(cur.String()); p != "" {
						parts = append(parts, p)
					}
					cur.Reset()
					break
				}
			}
		}

		cur.WriteByte(ch)
	}

	if p := strings.TrimSpace(cur.String()); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// expandSingleLineIf rewrites "If c Then a Else b" and "If c Then a"
// into multi-line blocks.
func expandSingleLineIf(line string) []string {
	if m := vbIfThenElseRe.FindStringSubmatch(line); m != nil {
		return []string{
			"If " + strings.TrimSpace(m[1]) + " Then",
			indentUnit + strings.TrimSpace(m[2]),
			"Else",
			indentUnit + strings.TrimSpace(m[3]),
			"End If",
		}
	}

	if m := vbIfThenRe.FindStringSubmatch(line); m != nil && !strings.HasSuffix(strings.ToLower(line), "then") {
		return []string{
			"If " + strings.TrimSpace(m[1]) + " Then",
			indentUnit + strings.TrimSpace(m[2]),
			"End If",
		}
	}

	return []string{line}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
