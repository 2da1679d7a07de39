package structure

import (
	"fmt"

	"github.com/jakecoffman/cp/v2"

	"pontifex/internal/model"
)

// World constants for the standardized rig. Every candidate is simulated
// under the same gravity, damping and solver budget so peak-stress numbers
// are comparable across genomes.
const (
	Gravity          = 900.0
	Damping          = 0.3
	SolverIterations = 30000
	SegmentRadius    = 5.0
	StepsPerSecond   = 60
	StepDT           = 1.0 / StepsPerSecond
)

// Collision categories. Road members interact with the load only; support
// members interact with nothing; members never collide with each other.
const (
	CategoryRoad uint = 1 << iota
	CategorySupport
	CategoryLoad
)

var (
	RoadFilter    = cp.NewShapeFilter(cp.NO_GROUP, CategoryRoad, CategoryLoad)
	SupportFilter = cp.NewShapeFilter(cp.NO_GROUP, CategorySupport, 0)
	LoadFilter    = cp.NewShapeFilter(cp.NO_GROUP, CategoryLoad, CategoryRoad)
)

// SegmentLine is a member's current world-space span, for observation only.
type SegmentLine struct {
	A, B model.Vec2
	Role model.EdgeRole
}

// Structure is the rigid-body rendition of one genome: a segment body per
// member, pivot joints locking members together at shared nodes, and anchor
// joints pinning members with a static endpoint to the world.
type Structure struct {
	genome model.Genome
	space  *cp.Space

	order    []model.EdgeKey
	segments map[model.EdgeKey]*cp.Body
	shapes   map[model.EdgeKey]*cp.Shape

	joints   []*cp.Constraint
	rigidity int
	anchors  int
}

// Build assembles the physics rendition of a genome. The genome is validated
// first; an invalid graph aborts the build before any body exists.
//
// Joint layout: for each node of degree d, every unordered pair of incident
// members is pinned at the node position, d*(d-1)/2 joints. For each member
// with a static endpoint (checked in canonical a-then-b order, first match
// only) one static anchor body plus a pivot joint is added.
func Build(genome model.Genome) (*Structure, error) {
	if err := genome.Validate(); err != nil {
		return nil, fmt.Errorf("build structure %q: %w", genome.ID, err)
	}

	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: 0, Y: Gravity})
	space.SetDamping(Damping)
	space.Iterations = SolverIterations

	st := &Structure{
		genome:   genome,
		space:    space,
		order:    make([]model.EdgeKey, 0, len(genome.Edges)),
		segments: make(map[model.EdgeKey]*cp.Body, len(genome.Edges)),
		shapes:   make(map[model.EdgeKey]*cp.Shape, len(genome.Edges)),
	}

	for _, e := range genome.Edges {
		aPos, _ := genome.Position(e.Key.A)
		bPos, _ := genome.Position(e.Key.B)
		mid := aPos.Mid(bPos)
		localA := cp.Vector{X: aPos.X - mid.X, Y: aPos.Y - mid.Y}
		localB := cp.Vector{X: bPos.X - mid.X, Y: bPos.Y - mid.Y}

		body := space.AddBody(cp.NewBody(e.Mass, cp.MomentForSegment(e.Mass, localA, localB, SegmentRadius)))
		body.SetPosition(cp.Vector{X: mid.X, Y: mid.Y})

		shape := space.AddShape(cp.NewSegment(body, localA, localB, SegmentRadius))
		if e.Role == model.RoleRoad {
			shape.SetFilter(RoadFilter)
		} else {
			shape.SetFilter(SupportFilter)
		}

		st.order = append(st.order, e.Key)
		st.segments[e.Key] = body
		st.shapes[e.Key] = shape
	}

	adj := genome.Adjacency()
	for _, n := range genome.Nodes {
		neighbors := adj[n.ID]
		pivot := cp.Vector{X: n.Pos.X, Y: n.Pos.Y}
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				left := st.segments[model.MakeEdgeKey(n.ID, neighbors[i])]
				right := st.segments[model.MakeEdgeKey(n.ID, neighbors[j])]
				st.addJoint(cp.NewPivotJoint(left, right, pivot))
				st.rigidity++
			}
		}
	}

	for _, e := range genome.Edges {
		id, ok := firstStaticEndpoint(genome, e.Key)
		if !ok {
			continue
		}
		pos, _ := genome.Position(id)
		pivot := cp.Vector{X: pos.X, Y: pos.Y}
		anchor := space.AddBody(cp.NewStaticBody())
		anchor.SetPosition(pivot)
		st.addJoint(cp.NewPivotJoint(anchor, st.segments[e.Key], pivot))
		st.anchors++
	}

	return st, nil
}

func firstStaticEndpoint(genome model.Genome, key model.EdgeKey) (model.NodeID, bool) {
	if genome.IsStatic(key.A) {
		return key.A, true
	}
	if genome.IsStatic(key.B) {
		return key.B, true
	}
	return 0, false
}

func (st *Structure) addJoint(c *cp.Constraint) {
	c.SetCollideBodies(false)
	st.space.AddConstraint(c)
	st.joints = append(st.joints, c)
}

func (st *Structure) Space() *cp.Space { return st.space }

// Joints returns every constraint, rigidity joints first, then anchors.
func (st *Structure) Joints() []*cp.Constraint { return st.joints }

func (st *Structure) SegmentCount() int       { return len(st.order) }
func (st *Structure) RigidityJointCount() int { return st.rigidity }
func (st *Structure) AnchorJointCount() int   { return st.anchors }

// PeakImpulse scans every joint and returns the largest impulse applied
// during the last solver step.
func (st *Structure) PeakImpulse() float64 {
	peak := 0.0
	for _, joint := range st.joints {
		if impulse := joint.Class.GetImpulse(); impulse > peak {
			peak = impulse
		}
	}
	return peak
}

// Segments reports the current world-space member spans in edge order.
func (st *Structure) Segments() []SegmentLine {
	out := make([]SegmentLine, 0, len(st.order))
	for i, key := range st.order {
		body := st.segments[key]
		seg := st.shapes[key].Class.(*cp.Segment)
		a := body.LocalToWorld(seg.A())
		b := body.LocalToWorld(seg.B())
		out = append(out, SegmentLine{
			A:    model.Vec2{X: a.X, Y: a.Y},
			B:    model.Vec2{X: b.X, Y: b.Y},
			Role: st.genome.Edges[i].Role,
		})
	}
	return out
}

func (st *Structure) Genome() model.Genome { return st.genome }

// Step advances the simulation by one fixed tick.
func (st *Structure) Step() {
	st.space.Step(StepDT)
}
