// Package graph aggregates cross-references into a directed document
// graph. It doubles as the document registry: targets are resolved
// against registered documents by id, then by case-insensitive name,
// and edges whose target resolves to nothing are kept as unresolved
// rather than dropped.
package graph

import (
	"sort"
	"strings"

	"github.com/chrisjgaze/bp-analyzer/internal/xref"
)

// Node is one registered document.
type Node struct {
	ID   string
	Name string
	Kind string // "P" or "O"
}

// Edge is the aggregate of every call site from one document to one
// target. Weight is the call-site count. ToID is empty when the target
// did not resolve to a registered document.
type Edge struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Kind     xref.Kind
	Weight   int
}

type edgeKey struct {
	from   string
	target string
	kind   xref.Kind
}

// Graph manages document nodes and their call relationships.
type Graph struct {
	nodes map[string]*Node
	edges map[edgeKey]*Edge

	// Lookup indexes: uppercased id and lowercased name.
	idIndex   map[string]*Node
	nameIndex map[string]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:     make(map[string]*Node),
		edges:     make(map[edgeKey]*Edge),
		idIndex:   make(map[string]*Node),
		nameIndex: make(map[string]*Node),
	}
}

// AddDocument registers a document as a node and indexes it for target
// resolution.
func (g *Graph) AddDocument(id, name, kind string) {
	n := &Node{ID: id, Name: name, Kind: kind}
	g.nodes[id] = n
	g.idIndex[strings.ToUpper(id)] = n
	if name != "" {
		g.nameIndex[strings.ToLower(name)] = n
	}
}

// Link accumulates cross-references into weighted edges, resolving each
// target against the registered documents. Unresolved targets keep
// their literal name and an empty ToID.
func (g *Graph) Link(refs []xref.CrossReference) {
	for _, ref := range refs {
		key := edgeKey{from: ref.SourceID, target: ref.Target, kind: ref.Kind}
		e, ok := g.edges[key]
		if !ok {
			e = &Edge{
				FromID:   ref.SourceID,
				FromName: ref.SourceName,
				ToName:   ref.Target,
				Kind:     ref.Kind,
			}
			if n, ok := g.resolve(ref.Target); ok {
				e.ToID = n.ID
				e.ToName = n.Name
			}
			g.edges[key] = e
		}
		e.Weight++
	}
}

func (g *Graph) resolve(target string) (*Node, bool) {
	if n, ok := g.idIndex[strings.ToUpper(target)]; ok {
		return n, true
	}
	if n, ok := g.nameIndex[strings.ToLower(target)]; ok {
		return n, true
	}
	return nil, false
}

// Lookup resolves a literal target the same way Link does.
func (g *Graph) Lookup(target string) (*Node, bool) {
	return g.resolve(target)
}

// Edges returns all edges sorted by source name, then target name.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromName != out[j].FromName {
			return out[i].FromName < out[j].FromName
		}
		return out[i].ToName < out[j].ToName
	})
	return out
}

// OutDegree returns the total call-site count from a document.
func (g *Graph) OutDegree(id string) int {
	total := 0
	for _, e := range g.edges {
		if e.FromID == id {
			total += e.Weight
		}
	}
	return total
}

// CallersOf returns the distinct documents calling the given target id,
// sorted by name.
func (g *Graph) CallersOf(id string) []Node {
	var out []Node
	seen := map[string]bool{}
	for _, e := range g.edges {
		if e.ToID != id || seen[e.FromID] {
			continue
		}
		seen[e.FromID] = true
		if n, ok := g.nodes[e.FromID]; ok {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
