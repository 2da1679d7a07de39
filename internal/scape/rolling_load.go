package scape

import (
	"context"

	"github.com/jakecoffman/cp/v2"

	"pontifex/internal/model"
	"pontifex/internal/structure"
)

const (
	DefaultLoadMass   = 50.0
	DefaultLoadRadius = 10.0
	DefaultLoadSpeed  = 60.0
	DefaultMaxSteps   = 7200

	// CollapsePeak is the fitness assigned when the load fails to reach the
	// target within the step cap. Finite so collapsed genomes still order
	// behind every surviving genome instead of poisoning comparisons.
	CollapsePeak = 1e12
)

// RollingLoadScape drives a circular load across a structure and scores the
// genome by the worst joint-impulse rate seen on the way. The load's
// horizontal velocity is pinned to Speed after every velocity update, so
// traversal time depends only on the horizontal distance; the vertical
// component stays under gravity and contacts.
type RollingLoadScape struct {
	Start      model.Vec2
	TargetX    float64
	Speed      float64
	LoadMass   float64
	LoadRadius float64
	MaxSteps   int
}

func (s RollingLoadScape) Name() string { return "rolling-load" }

func (s RollingLoadScape) Evaluate(ctx context.Context, genome model.Genome) (Fitness, Trace, error) {
	st, err := structure.Build(genome)
	if err != nil {
		return 0, nil, err
	}

	maxSteps := s.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	load := s.AttachLoad(st.Space())

	peak := 0.0
	steps := 0
	for load.Position().X < s.TargetX {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		if steps >= maxSteps {
			return CollapsePeak, Trace{
				"collapsed": true,
				"steps":     steps,
				"load_x":    load.Position().X,
				"joints":    len(st.Joints()),
			}, nil
		}
		st.Step()
		steps++
		if rate := st.PeakImpulse() * structure.StepsPerSecond; rate > peak {
			peak = rate
		}
	}

	return Fitness(peak), Trace{
		"collapsed": false,
		"steps":     steps,
		"load_x":    load.Position().X,
		"joints":    len(st.Joints()),
	}, nil
}

// AttachLoad adds the rolling load body to a space and installs the
// horizontal-speed override. Exposed so the replay viewer drives the exact
// same load the evaluator scores.
func (s RollingLoadScape) AttachLoad(space *cp.Space) *cp.Body {
	mass := s.LoadMass
	if mass <= 0 {
		mass = DefaultLoadMass
	}
	radius := s.LoadRadius
	if radius <= 0 {
		radius = DefaultLoadRadius
	}
	speed := s.Speed
	if speed <= 0 {
		speed = DefaultLoadSpeed
	}

	body := space.AddBody(cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{})))
	body.SetPosition(cp.Vector{X: s.Start.X, Y: s.Start.Y})

	shape := space.AddShape(cp.NewCircle(body, radius, cp.Vector{}))
	shape.SetFilter(structure.LoadFilter)
	shape.SetFriction(0.9)

	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(b, gravity, damping, dt)
		b.SetVelocityVector(cp.Vector{X: speed, Y: b.Velocity().Y})
	})
	return body
}
