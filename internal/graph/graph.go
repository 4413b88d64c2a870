// Package graph builds the dependency graph of a Terraform configuration by
// scanning attribute values for interpolation references.
package graph

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/emicklei/dot"
)

// Format specifies the output format for rendered graphs.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Config is the raw configuration the graph is built from. The maps are
// keyed type → name → attributes (resources, data) or declared name
// (variables, locals).
type Config struct {
	Resources map[string]map[string]map[string]any
	Data      map[string]map[string]map[string]any
	Variables map[string]bool
	Locals    map[string]bool
}

// UnresolvedRef is a reference to an address that is not declared in the
// configuration.
type UnresolvedRef struct {
	// Address is the referring resource ("aws_ecs_service.web")
	Address string
	// Target is the referenced address ("aws_ecs_cluster.main")
	Target string
}

func (u UnresolvedRef) String() string {
	return fmt.Sprintf("%s references undeclared %s", u.Address, u.Target)
}

// Graph is the resource dependency graph.
type Graph struct {
	nodes      []string
	deps       map[string][]string // address → addresses it depends on
	unresolved []UnresolvedRef
}

var (
	exprRE = regexp.MustCompile(`\$\{([^}]+)\}`)
	refRE  = regexp.MustCompile(`\b(?:data\.[a-z0-9_]+\.[A-Za-z0-9_-]+|var\.[A-Za-z0-9_-]+|local\.[A-Za-z0-9_-]+|aws_[a-z0-9_]+\.[A-Za-z0-9_-]+)`)
)

// New builds the graph from a configuration.
func New(cfg Config) *Graph {
	g := &Graph{deps: make(map[string][]string)}

	declared := make(map[string]bool)
	for typ, byName := range cfg.Resources {
		for name := range byName {
			addr := typ + "." + name
			declared[addr] = true
			g.nodes = append(g.nodes, addr)
		}
	}
	sort.Strings(g.nodes)

	for typ, byName := range cfg.Resources {
		for name, attrs := range byName {
			addr := typ + "." + name
			seen := make(map[string]bool)
			scan(attrs, func(ref string) {
				target, kind := classify(ref)
				switch kind {
				case refVariable:
					if !cfg.Variables[target] {
						g.unresolved = append(g.unresolved, UnresolvedRef{Address: addr, Target: "var." + target})
					}
				case refLocal:
					if !cfg.Locals[target] {
						g.unresolved = append(g.unresolved, UnresolvedRef{Address: addr, Target: "local." + target})
					}
				case refData:
					if !dataDeclared(cfg.Data, target) {
						g.unresolved = append(g.unresolved, UnresolvedRef{Address: addr, Target: target})
					}
				case refResource:
					if target == addr {
						return // self reference
					}
					if !declared[target] {
						g.unresolved = append(g.unresolved, UnresolvedRef{Address: addr, Target: target})
						return
					}
					if !seen[target] {
						seen[target] = true
						g.deps[addr] = append(g.deps[addr], target)
					}
				}
			})
			sort.Strings(g.deps[addr])
		}
	}

	sort.Slice(g.unresolved, func(i, j int) bool {
		if g.unresolved[i].Address != g.unresolved[j].Address {
			return g.unresolved[i].Address < g.unresolved[j].Address
		}
		return g.unresolved[i].Target < g.unresolved[j].Target
	})

	return g
}

// Unresolved returns references to undeclared addresses.
func (g *Graph) Unresolved() []UnresolvedRef {
	return g.unresolved
}

// Dependencies returns the addresses the given resource depends on.
func (g *Graph) Dependencies(addr string) []string {
	return g.deps[addr]
}

// Order returns resource addresses in dependency order (dependencies first).
// The order is deterministic for a given configuration.
func (g *Graph) Order() ([]string, error) {
	dependents := make(map[string][]string)
	inDegree := make(map[string]int)
	for _, addr := range g.nodes {
		inDegree[addr] = 0
	}
	for addr, deps := range g.deps {
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], addr)
			inDegree[addr]++
		}
	}

	// Kahn's algorithm, queue kept sorted for determinism
	var queue []string
	for _, addr := range g.nodes {
		if inDegree[addr] == 0 {
			queue = append(queue, addr)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dep := range dependents[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, g.cycleError()
	}
	return result, nil
}

// cycleError reports one dependency cycle.
func (g *Graph) cycleError() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var walk func(node string) bool
	walk = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range g.deps[node] {
			if !visited[dep] {
				if walk(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for _, addr := range g.nodes {
		if !visited[addr] {
			if walk(addr) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		return fmt.Errorf("circular dependency detected: %s", strings.Join(cycle, " -> "))
	}
	return errors.New("circular dependency detected")
}

// Render renders the graph in the requested format.
func (g *Graph) Render(format Format, label string) string {
	out := g.build(label)
	if format == FormatMermaid {
		return dot.MermaidGraph(out, dot.MermaidTopToBottom)
	}
	return out.String()
}

// DOT renders the graph in Graphviz DOT format.
func (g *Graph) DOT(label string) string {
	return g.Render(FormatDOT, label)
}

func (g *Graph) build(label string) *dot.Graph {
	out := dot.NewGraph(dot.Directed)
	if label != "" {
		out.Attr("label", label)
	}

	nodes := make(map[string]dot.Node, len(g.nodes))
	for _, addr := range g.nodes {
		n := out.Node(addr)
		n.Attr("shape", "box")
		nodes[addr] = n
	}
	for _, addr := range g.nodes {
		for _, dep := range g.deps[addr] {
			out.Edge(nodes[dep], nodes[addr])
		}
	}

	return out
}

type refKind int

const (
	refResource refKind = iota
	refData
	refVariable
	refLocal
)

// classify splits a reference expression into its target address and kind.
func classify(ref string) (string, refKind) {
	switch {
	case strings.HasPrefix(ref, "var."):
		return strings.TrimPrefix(ref, "var."), refVariable
	case strings.HasPrefix(ref, "local."):
		return strings.TrimPrefix(ref, "local."), refLocal
	case strings.HasPrefix(ref, "data."):
		parts := strings.SplitN(ref, ".", 4)
		return strings.Join(parts[:3], "."), refData
	default:
		parts := strings.SplitN(ref, ".", 3)
		return parts[0] + "." + parts[1], refResource
	}
}

func dataDeclared(data map[string]map[string]map[string]any, addr string) bool {
	parts := strings.SplitN(addr, ".", 3)
	if len(parts) != 3 {
		return false
	}
	byName, ok := data[parts[1]]
	if !ok {
		return false
	}
	_, ok = byName[parts[2]]
	return ok
}

// scan walks a value tree and reports every interpolation reference found in
// string leaves.
func scan(v any, fn func(ref string)) {
	switch val := v.(type) {
	case string:
		for _, m := range exprRE.FindAllStringSubmatch(val, -1) {
			for _, ref := range refRE.FindAllString(m[1], -1) {
				fn(ref)
			}
		}
	case fmt.Stringer:
		scan(val.String(), fn)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			scan(val[k], fn)
		}
	case []any:
		for _, elem := range val {
			scan(elem, fn)
		}
	case []string:
		for _, elem := range val {
			scan(elem, fn)
		}
	}
}
