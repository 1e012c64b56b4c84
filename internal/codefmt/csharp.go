package codefmt

import (
	"regexp"
	"strings"
)

var (
	csElseAfterParenRe = regexp.MustCompile(`(?i)\)\s*else\s*\{`)
	csElseAfterBraceRe = regexp.MustCompile(`(?i)\}\s*else\s*\{`)
	csCatchRe          = regexp.MustCompile(`(?i)\}\s*catch\s*\(`)
	csFinallyRe        = regexp.MustCompile(`(?i)\}\s*finally\s*\{`)
)

// formatCSharp splits jammed one-liners at braces and semicolons, then
// re-indents by brace depth.
func formatCSharp(code string) string {
	code = splitCSharpOneLiners(code)
	if code == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(code, "\t", indentUnit), "\n")
	indent := 0
	var out []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}

		line = collapseSpacesOutsideStrings(line)

		if strings.HasPrefix(line, "}") && indent > 0 {
			indent--
		}

		out = append(out, strings.Repeat(indentUnit, indent)+line)

		indent += strings.Count(line, "{") - strings.Count(line, "}")
		if strings.HasPrefix(line, "}") {
			indent++ // the leading brace already dedented
		}
		if indent < 0 {
			indent = 0
		}
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func splitCSharpOneLiners(code string) string {
	s := code
	s = strings.ReplaceAll(s, "{", "{\n")
	s = strings.ReplaceAll(s, "}", "\n}\n")

	s = csElseAfterParenRe.ReplaceAllString(s, ")\nelse\n{")
	s = csElseAfterBraceRe.ReplaceAllString(s, "}\nelse\n{")
	s = csCatchRe.ReplaceAllString(s, "}\ncatch(")
	s = csFinallyRe.ReplaceAllString(s, "}\nfinally\n{")

	var out []string
	inFor := false
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		low := strings.ToLower(t)
		if strings.HasPrefix(low, "for(") || strings.HasPrefix(low, "for (") {
			inFor = true
		}
		if inFor && strings.Contains(t, ")") {
			inFor = false
		}

		// for(;;) headers keep their semicolons on one line
		if !inFor && strings.Contains(line, ";") {
			parts := strings.Split(line, ";")
			for _, p := range parts[:len(parts)-1] {
				if pt := strings.TrimSpace(p); pt != "" {
					out = append(out, pt+";")
				}
			}
			if tail := strings.TrimSpace(parts[len(parts)-1]); tail != "" {
				out = append(out, tail)
			}
		} else {
			out = append(out, line)
		}
	}

	return collapseBlankRuns(strings.Join(out, "\n"))
}

// collapseSpacesOutsideStrings squeezes whitespace runs to one space
// while leaving string literals byte-for-byte intact.
func collapseSpacesOutsideStrings(line string) string {
	var b strings.Builder
	inStr := false
	escaped := false
	prevSpace := false

	for _, ch := range line {
		if inStr {
			b.WriteRune(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inStr = false
			}
			continue
		}

		switch {
		case ch == '"':
			inStr = true
			b.WriteRune(ch)
			prevSpace = false
		case ch == ' ' || ch == '\t':
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
		default:
			b.WriteRune(ch)
			prevSpace = false
		}
	}

	return strings.TrimRight(b.String(), " ")
}
