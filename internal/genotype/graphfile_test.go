package genotype

import (
	"errors"
	"testing"

	"pontifex/internal/model"
)

func TestParseGraph(t *testing.T) {
	data := []byte(`{
		"id": "demo",
		"nodes": {"1": [100, 200], "2": [200, 200], "3": [300, 200]},
		"edges": [
			{"a": 2, "b": 1, "mass": 10, "role": "road"},
			{"a": 2, "b": 3, "mass": 8, "role": "support"}
		],
		"static": [1, 3]
	}`)

	genome, err := ParseGraph(data, "demo.json")
	if err != nil {
		t.Fatalf("parse graph: %v", err)
	}
	if genome.ID != "demo" || len(genome.Nodes) != 3 || len(genome.Edges) != 2 {
		t.Fatalf("unexpected genome shape: %+v", genome)
	}
	if genome.Edges[0].Key != model.MakeEdgeKey(1, 2) {
		t.Fatalf("expected canonical sorted edges, got %+v", genome.Edges)
	}
	if genome.Edges[1].Role != model.RoleSupport {
		t.Fatalf("expected support role preserved, got %q", genome.Edges[1].Role)
	}
	if !genome.IsStatic(1) || !genome.IsStatic(3) || genome.IsStatic(2) {
		t.Fatalf("unexpected static set: %v", genome.Static)
	}
}

func TestParseGraphDefaultsRoleToRoad(t *testing.T) {
	data := []byte(`{
		"nodes": {"1": [0, 0], "2": [100, 0]},
		"edges": [{"a": 1, "b": 2, "mass": 10}],
		"static": [1]
	}`)
	genome, err := ParseGraph(data, "plain.json")
	if err != nil {
		t.Fatalf("parse graph: %v", err)
	}
	if genome.Edges[0].Role != model.RoleRoad {
		t.Fatalf("expected default road role, got %q", genome.Edges[0].Role)
	}
	if genome.ID != "plain.json" {
		t.Fatalf("expected file name fallback id, got %q", genome.ID)
	}
}

func TestParseGraphRejectsBadInput(t *testing.T) {
	cases := map[string][]byte{
		"bad node id":     []byte(`{"nodes": {"x": [0, 0]}, "edges": [], "static": []}`),
		"bad coordinates": []byte(`{"nodes": {"1": [0]}, "edges": [], "static": []}`),
		"unknown endpoint": []byte(`{
			"nodes": {"1": [0, 0], "2": [100, 0]},
			"edges": [{"a": 1, "b": 9, "mass": 10}],
			"static": []
		}`),
		"zero mass": []byte(`{
			"nodes": {"1": [0, 0], "2": [100, 0]},
			"edges": [{"a": 1, "b": 2, "mass": 0}],
			"static": []
		}`),
	}
	for name, data := range cases {
		if _, err := ParseGraph(data, name); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}

	if _, err := ParseGraph([]byte(`{
		"nodes": {"1": [0, 0], "2": [100, 0]},
		"edges": [{"a": 1, "b": 9, "mass": 10}],
		"static": []
	}`), "unknown"); !errors.Is(err, model.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}
