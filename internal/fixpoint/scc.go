// Package fixpoint implements the fix-point driver (C10): strongly
// connected component detection over the MFA call graph (via Tarjan's
// algorithm) and the severity-monotone repeat-until-stable analysis loop
// for each SCC of mutually recursive functions.
//
// Grounded on the teacher's internal/elaborate/scc.go (CallGraph, SCCs via
// Tarjan, BuildCallGraph) — adapted node type from function-name string to
// ast.MFA, since this engine's call edges are keyed by module-qualified
// calls rather than single-module identifiers.
package fixpoint

import "github.com/sunholo/effectlang/internal/ast"

// CallGraph is a dependency graph between MFAs: an edge from a to b means
// a's clause body calls b.
type CallGraph struct {
	nodes   []ast.MFA
	edges   map[ast.MFA][]ast.MFA
	nodeSet map[ast.MFA]bool
}

// NewCallGraph creates an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		edges:   make(map[ast.MFA][]ast.MFA),
		nodeSet: make(map[ast.MFA]bool),
	}
}

// AddNode adds an MFA to the graph if not already present.
func (g *CallGraph) AddNode(m ast.MFA) {
	if !g.nodeSet[m] {
		g.nodes = append(g.nodes, m)
		g.nodeSet[m] = true
		g.edges[m] = []ast.MFA{}
	}
}

// AddEdge records that caller's body calls callee.
func (g *CallGraph) AddEdge(caller, callee ast.MFA) {
	g.AddNode(caller)
	g.AddNode(callee)
	g.edges[caller] = append(g.edges[caller], callee)
}

// SCCs computes strongly connected components using Tarjan's algorithm.
// Each returned slice is one SCC (a singleton for a non-recursive function,
// or several MFAs for mutual recursion); C10 drives a fix-point loop over
// every SCC with more than one member, or a self-edge.
func (g *CallGraph) SCCs() [][]ast.MFA {
	index := 0
	var stack []ast.MFA
	indices := make(map[ast.MFA]int)
	lowlinks := make(map[ast.MFA]int)
	onStack := make(map[ast.MFA]bool)
	var sccs [][]ast.MFA

	var strongconnect func(ast.MFA)
	strongconnect = func(v ast.MFA) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if !g.nodeSet[w] {
				continue // edge to an external (already-settled) MFA
			}
			if _, ok := indices[w]; !ok {
				strongconnect(w)
				lowlinks[v] = minInt(lowlinks[v], lowlinks[w])
			} else if onStack[w] {
				lowlinks[v] = minInt(lowlinks[v], indices[w])
			}
		}

		if lowlinks[v] == indices[v] {
			var scc []ast.MFA
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, ok := indices[node]; !ok {
			strongconnect(node)
		}
	}

	return sccs
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// IsRecursive reports whether an SCC represents genuine (mutual or direct)
// recursion requiring fix-point iteration, versus a singleton with no
// self-edge.
func (g *CallGraph) IsRecursive(scc []ast.MFA) bool {
	if len(scc) > 1 {
		return true
	}
	if len(scc) == 1 {
		m := scc[0]
		for _, callee := range g.edges[m] {
			if callee == m {
				return true
			}
		}
	}
	return false
}

// BuildCallGraph constructs a CallGraph from the per-function call lists
// the walker recorded, restricted to calls that land on a function this
// module actually defines (calls into already-settled external code are
// not part of the fix-point — their effect is read from the registry as a
// constant each iteration).
func BuildCallGraph(defined []ast.MFA, calls map[ast.MFA][]ast.MFA) *CallGraph {
	g := NewCallGraph()
	definedSet := make(map[ast.MFA]bool, len(defined))
	for _, m := range defined {
		definedSet[m] = true
		g.AddNode(m)
	}
	for caller, callees := range calls {
		if !definedSet[caller] {
			continue
		}
		for _, callee := range callees {
			if definedSet[callee] {
				g.AddEdge(caller, callee)
			}
		}
	}
	return g
}
