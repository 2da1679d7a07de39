package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/jakecoffman/cp/v2"

	"pontifex/internal/model"
	"pontifex/internal/scape"
	"pontifex/internal/structure"
)

const (
	ScreenWidth  = 600
	ScreenHeight = 400

	nodeRadius = 7.5
	lineWidth  = 5
)

var (
	colorBackground = color.RGBA{R: 0x11, G: 0x11, B: 0x16, A: 0xff}
	colorRoad       = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	colorSupport    = color.RGBA{R: 0x78, G: 0x78, B: 0x96, A: 0xff}
	colorStatic     = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	colorFree       = color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	colorLoad       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Replay steps one genome under the rolling load and draws it. Purely
// observational: it reuses the evaluator's builder and load but its numbers
// never feed back into any archive.
type Replay struct {
	structure *structure.Structure
	loadScape scape.RollingLoadScape
	load      *cp.Body
	loadR     float64

	steps    int
	maxSteps int
	peak     float64
	done     bool
}

func NewReplay(genome model.Genome, loadScape scape.RollingLoadScape) (*Replay, error) {
	st, err := structure.Build(genome)
	if err != nil {
		return nil, err
	}
	maxSteps := loadScape.MaxSteps
	if maxSteps <= 0 {
		maxSteps = scape.DefaultMaxSteps
	}
	radius := loadScape.LoadRadius
	if radius <= 0 {
		radius = scape.DefaultLoadRadius
	}
	return &Replay{
		structure: st,
		loadScape: loadScape,
		load:      loadScape.AttachLoad(st.Space()),
		loadR:     radius,
		maxSteps:  maxSteps,
	}, nil
}

func (r *Replay) Update() error {
	if r.done {
		return nil
	}
	r.structure.Step()
	r.steps++
	if rate := r.structure.PeakImpulse() * structure.StepsPerSecond; rate > r.peak {
		r.peak = rate
	}
	if r.load.Position().X >= r.loadScape.TargetX || r.steps >= r.maxSteps {
		r.done = true
	}
	return nil
}

func (r *Replay) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	segments := r.structure.Segments()
	for _, line := range segments {
		clr := colorSupport
		if line.Role == model.RoleRoad {
			clr = colorRoad
		}
		vector.StrokeLine(screen,
			float32(line.A.X), float32(line.A.Y),
			float32(line.B.X), float32(line.B.Y),
			lineWidth, clr, true)
	}

	genome := r.structure.Genome()
	for id, pos := range liveNodePositions(genome, segments) {
		clr := colorFree
		if genome.IsStatic(id) {
			clr = colorStatic
		}
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), nodeRadius, clr, true)
	}

	pos := r.load.Position()
	vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), float32(r.loadR), colorLoad, true)

	status := "rolling"
	if r.done {
		status = "done"
	}
	hud := fmt.Sprintf("step %d  load x %.0f  peak %.1f  %s", r.steps, pos.X, r.peak, status)
	text.Draw(screen, hud, basicfont.Face7x13, 10, 20, color.White)
}

// liveNodePositions places each node marker at the mean of the matching
// endpoints of its incident members, so markers track the structure as it
// flexes. Isolated nodes sit at their rest position.
func liveNodePositions(genome model.Genome, segments []structure.SegmentLine) map[model.NodeID]model.Vec2 {
	sums := make(map[model.NodeID]model.Vec2, len(genome.Nodes))
	counts := make(map[model.NodeID]int, len(genome.Nodes))
	for i, e := range genome.Edges {
		sums[e.Key.A] = sums[e.Key.A].Add(segments[i].A)
		counts[e.Key.A]++
		sums[e.Key.B] = sums[e.Key.B].Add(segments[i].B)
		counts[e.Key.B]++
	}

	out := make(map[model.NodeID]model.Vec2, len(genome.Nodes))
	for _, n := range genome.Nodes {
		if c := counts[n.ID]; c > 0 {
			sum := sums[n.ID]
			out[n.ID] = model.Vec2{X: sum.X / float64(c), Y: sum.Y / float64(c)}
		} else {
			out[n.ID] = n.Pos
		}
	}
	return out
}

func (r *Replay) Layout(_, _ int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Done reports whether the traversal finished or hit the step cap.
func (r *Replay) Done() bool { return r.done }

// Peak is the highest joint-impulse rate seen so far.
func (r *Replay) Peak() float64 { return r.peak }
