package findings

import "strings"

// snippetCap bounds stored snippets so a minified one-liner cannot
// bloat the findings table.
const snippetCap = 160

// Classify evaluates the bundled rule table against normalized code
// text. Stateless across units; safe for concurrent use.
func Classify(normalized string) []Finding {
	return ClassifyWith(DefaultRules, normalized)
}

// ClassifyWith evaluates an explicit rule table. Every rule runs
// independently over the full text: rules never short-circuit each
// other, and one line may yield findings in several categories at once.
func ClassifyWith(rules []Rule, normalized string) []Finding {
	if normalized == "" {
		return nil
	}

	lines := strings.Split(normalized, "\n")
	var out []Finding

	for _, rule := range rules {
		out = append(out, evaluate(rule, lines)...)
	}
	return out
}

// evaluate applies a single rule to the text lines. Substring rules
// emit at most one finding per matching line; regexp rules emit one
// finding per match occurrence.
func evaluate(rule Rule, lines []string) []Finding {
	var out []Finding

	for i, line := range lines {
		if rule.Pattern != nil {
			for _, m := range rule.Pattern.FindAllString(line, -1) {
				out = append(out, Finding{
					Category: rule.Category,
					Snippet:  capSnippet(m),
					Line:     i + 1,
				})
			}
			continue
		}

		lower := strings.ToLower(line)
		for _, sub := range rule.Substrings {
			if strings.Contains(lower, sub) {
				out = append(out, Finding{
					Category: rule.Category,
					Snippet:  capSnippet(strings.TrimSpace(line)),
					Line:     i + 1,
				})
				break
			}
		}
	}
	return out
}

func capSnippet(s string) string {
	if len(s) <= snippetCap {
		return s
	}
	return s[:snippetCap] + "..."
}
