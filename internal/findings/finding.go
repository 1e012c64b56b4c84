// Package findings applies a declarative table of lexical pattern rules
// to normalized code text. Rules are independent of each other: adding
// a heuristic means appending a table row, never touching traversal or
// another rule's logic. Nothing here executes code, talks to the
// network, or consults external state.
package findings

// Finding is one heuristic pattern match flagged against a code unit's
// text. A unit may carry zero, one, or many findings, including several
// of the same category.
type Finding struct {
	Category string `json:"category"`
	Snippet  string `json:"snippet"`
	Line     int    `json:"line,omitempty"`
}
