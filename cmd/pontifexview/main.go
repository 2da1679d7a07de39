// Command pontifexview replays a bridge graph under the rolling load in a
// window. It shares the builder and load setup with the evaluator, so what it
// shows is exactly what a run scored.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"pontifex/internal/genotype"
	"pontifex/internal/model"
	"pontifex/internal/scape"
	"pontifex/internal/view"
)

func main() {
	fs := flag.NewFlagSet("pontifexview", flag.ExitOnError)
	graphPath := fs.String("graph", "", "graph JSON file (empty: built-in reference span)")
	startX := fs.Float64("load-start-x", 0, "load start x (0: derive from graph)")
	startY := fs.Float64("load-start-y", 0, "load start y (0: derive from graph)")
	targetX := fs.Float64("load-target-x", 0, "load target x (0: derive from graph)")
	speed := fs.Float64("load-speed", scape.DefaultLoadSpeed, "horizontal load speed, px/s")
	mass := fs.Float64("load-mass", scape.DefaultLoadMass, "load mass")
	radius := fs.Float64("load-radius", scape.DefaultLoadRadius, "load radius, px")
	maxSteps := fs.Int("max-steps", scape.DefaultMaxSteps, "step cap before the replay stops")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	genome := genotype.ReferenceSpan()
	if *graphPath != "" {
		g, err := genotype.LoadGraphFile(*graphPath)
		if err != nil {
			log.Fatalf("load graph: %v", err)
		}
		genome = g
	}

	loadScape := scape.RollingLoadScape{
		Start:      model.Vec2{X: *startX, Y: *startY},
		TargetX:    *targetX,
		Speed:      *speed,
		LoadMass:   *mass,
		LoadRadius: *radius,
		MaxSteps:   *maxSteps,
	}
	deriveLoadPath(&loadScape, genome)

	replay, err := view.NewReplay(genome, loadScape)
	if err != nil {
		log.Fatalf("build replay: %v", err)
	}

	ebiten.SetWindowSize(view.ScreenWidth, view.ScreenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("pontifex - %s", genome.ID))
	if err := ebiten.RunGame(replay); err != nil {
		log.Fatal(err)
	}
}

// deriveLoadPath fills in zero start/target values from the graph extent:
// the load enters just above the leftmost node and leaves past the rightmost.
func deriveLoadPath(s *scape.RollingLoadScape, genome model.Genome) {
	minX, maxX := genome.Nodes[0].Pos.X, genome.Nodes[0].Pos.X
	minY := genome.Nodes[0].Pos.Y
	for _, n := range genome.Nodes[1:] {
		if n.Pos.X < minX {
			minX = n.Pos.X
		}
		if n.Pos.X > maxX {
			maxX = n.Pos.X
		}
		if n.Pos.Y < minY {
			minY = n.Pos.Y
		}
	}
	if s.Start == (model.Vec2{}) {
		s.Start = model.Vec2{X: minX, Y: minY - 30}
	}
	if s.TargetX == 0 {
		s.TargetX = maxX + 10
	}
}
