package genotype

import (
	"encoding/json"
	"fmt"
	"os"

	"pontifex/internal/model"
)

// graphFile is the on-disk bridge graph:
//
//	{
//	  "nodes":  {"1": [100, 200], "2": [200, 200]},
//	  "edges":  [{"a": 1, "b": 2, "mass": 10, "role": "road"}],
//	  "static": [1]
//	}
type graphFile struct {
	ID     string               `json:"id"`
	Nodes  map[string][]float64 `json:"nodes"`
	Edges  []graphFileEdge      `json:"edges"`
	Static []model.NodeID       `json:"static"`
}

type graphFileEdge struct {
	A    model.NodeID `json:"a"`
	B    model.NodeID `json:"b"`
	Mass float64      `json:"mass"`
	Role string       `json:"role"`
}

func LoadGraphFile(path string) (model.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Genome{}, err
	}
	return ParseGraph(data, path)
}

// ParseGraph decodes a graph file into a validated genome. The name is used
// in errors and as the genome id when the file has none.
func ParseGraph(data []byte, name string) (model.Genome, error) {
	var raw graphFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Genome{}, fmt.Errorf("parse graph %s: %w", name, err)
	}

	nodes := make([]model.Node, 0, len(raw.Nodes))
	for idText, pos := range raw.Nodes {
		var id model.NodeID
		if _, err := fmt.Sscanf(idText, "%d", &id); err != nil {
			return model.Genome{}, fmt.Errorf("graph %s: node id %q: %w", name, idText, err)
		}
		if len(pos) != 2 {
			return model.Genome{}, fmt.Errorf("graph %s: node %q: expected [x, y], got %v", name, idText, pos)
		}
		nodes = append(nodes, model.Node{ID: id, Pos: model.Vec2{X: pos[0], Y: pos[1]}})
	}

	edges := make([]model.Edge, 0, len(raw.Edges))
	for _, e := range raw.Edges {
		role := model.EdgeRole(e.Role)
		if e.Role == "" {
			role = model.RoleRoad
		}
		edges = append(edges, model.Edge{Key: model.MakeEdgeKey(e.A, e.B), Mass: e.Mass, Role: role})
	}

	id := raw.ID
	if id == "" {
		id = name
	}
	genome, err := model.NewGenome(id, nodes, edges, raw.Static)
	if err != nil {
		return model.Genome{}, fmt.Errorf("graph %s: %w", name, err)
	}
	return genome, nil
}
