package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

var (
	ErrEmptyGraph      = errors.New("genome requires at least one node and one edge")
	ErrUnknownNode     = errors.New("reference to unknown node")
	ErrNonPositiveMass = errors.New("edge mass must be positive")
	ErrDuplicateEdge   = errors.New("duplicate edge")
	ErrSelfLoop        = errors.New("edge endpoints must differ")
)

type NodeID int

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mid returns the midpoint between v and o.
func (v Vec2) Mid(o Vec2) Vec2 {
	return Vec2{X: (v.X + o.X) / 2, Y: (v.Y + o.Y) / 2}
}

func (v Vec2) DistSq(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

func (v Vec2) Dist(o Vec2) float64 {
	return math.Sqrt(v.DistSq(o))
}

type Node struct {
	ID  NodeID `json:"id"`
	Pos Vec2   `json:"pos"`
}

// EdgeRole selects the collision behaviour of a member: road segments carry
// the rolling load, support segments only brace the structure.
type EdgeRole string

const (
	RoleRoad    EdgeRole = "road"
	RoleSupport EdgeRole = "support"
)

// EdgeKey identifies a member by its endpoint pair in canonical order (A < B).
type EdgeKey struct {
	A NodeID `json:"a"`
	B NodeID `json:"b"`
}

func MakeEdgeKey(a, b NodeID) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

type Edge struct {
	Key  EdgeKey  `json:"key"`
	Mass float64  `json:"mass"`
	Role EdgeRole `json:"role"`
}

// Genome is a truss candidate: node positions, weighted members and the set
// of nodes pinned to the world. Only free-node positions evolve.
type Genome struct {
	VersionedRecord
	ID     string   `json:"id"`
	Nodes  []Node   `json:"nodes"`
	Edges  []Edge   `json:"edges"`
	Static []NodeID `json:"static"`
}

// NewGenome builds a genome in canonical form: nodes sorted by id, edge keys
// normalized and sorted, static ids sorted. The result is validated.
func NewGenome(id string, nodes []Node, edges []Edge, static []NodeID) (Genome, error) {
	g := Genome{
		ID:     id,
		Nodes:  append([]Node(nil), nodes...),
		Edges:  append([]Edge(nil), edges...),
		Static: append([]NodeID(nil), static...),
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	for i := range g.Edges {
		g.Edges[i].Key = MakeEdgeKey(g.Edges[i].Key.A, g.Edges[i].Key.B)
		if g.Edges[i].Role == "" {
			g.Edges[i].Role = RoleRoad
		}
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].Key.A != g.Edges[j].Key.A {
			return g.Edges[i].Key.A < g.Edges[j].Key.A
		}
		return g.Edges[i].Key.B < g.Edges[j].Key.B
	})
	sort.Slice(g.Static, func(i, j int) bool { return g.Static[i] < g.Static[j] })
	if err := g.Validate(); err != nil {
		return Genome{}, err
	}
	return g, nil
}

// Validate reports the first structural defect found. A genome that fails
// validation must never reach the physics builder.
func (g Genome) Validate() error {
	if len(g.Nodes) == 0 || len(g.Edges) == 0 {
		return ErrEmptyGraph
	}
	known := make(map[NodeID]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, exists := known[n.ID]; exists {
			return fmt.Errorf("node %d: duplicate id", n.ID)
		}
		known[n.ID] = struct{}{}
	}
	seen := make(map[EdgeKey]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if e.Key.A == e.Key.B {
			return fmt.Errorf("edge (%d,%d): %w", e.Key.A, e.Key.B, ErrSelfLoop)
		}
		if e.Key.B < e.Key.A {
			return fmt.Errorf("edge (%d,%d): key is not canonical", e.Key.A, e.Key.B)
		}
		if _, ok := known[e.Key.A]; !ok {
			return fmt.Errorf("edge (%d,%d): endpoint %d: %w", e.Key.A, e.Key.B, e.Key.A, ErrUnknownNode)
		}
		if _, ok := known[e.Key.B]; !ok {
			return fmt.Errorf("edge (%d,%d): endpoint %d: %w", e.Key.A, e.Key.B, e.Key.B, ErrUnknownNode)
		}
		if e.Mass <= 0 {
			return fmt.Errorf("edge (%d,%d): mass %v: %w", e.Key.A, e.Key.B, e.Mass, ErrNonPositiveMass)
		}
		if e.Role != RoleRoad && e.Role != RoleSupport {
			return fmt.Errorf("edge (%d,%d): unknown role %q", e.Key.A, e.Key.B, e.Role)
		}
		if _, dup := seen[e.Key]; dup {
			return fmt.Errorf("edge (%d,%d): %w", e.Key.A, e.Key.B, ErrDuplicateEdge)
		}
		seen[e.Key] = struct{}{}
	}
	for _, id := range g.Static {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("static node %d: %w", id, ErrUnknownNode)
		}
	}
	return nil
}

// Position returns the node's position, and whether the node exists.
func (g Genome) Position(id NodeID) (Vec2, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n.Pos, true
		}
	}
	return Vec2{}, false
}

func (g Genome) IsStatic(id NodeID) bool {
	for _, s := range g.Static {
		if s == id {
			return true
		}
	}
	return false
}

// Adjacency derives node -> neighbors in edge order. The map is rebuilt on
// every call; the genome never caches derived state.
func (g Genome) Adjacency() map[NodeID][]NodeID {
	adj := make(map[NodeID][]NodeID, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.Key.A] = append(adj[e.Key.A], e.Key.B)
		adj[e.Key.B] = append(adj[e.Key.B], e.Key.A)
	}
	return adj
}

// Degree is the number of members incident to the node.
func (g Genome) Degree(id NodeID) int {
	n := 0
	for _, e := range g.Edges {
		if e.Key.A == id || e.Key.B == id {
			n++
		}
	}
	return n
}
