package nodelink

import (
	"strings"
	"testing"

	"github.com/tagrel/tagrel/pkg/tags"
)

func buildGraph(t *testing.T) *tags.Graph {
	t.Helper()
	g := tags.New(tags.Options{})
	_, err := g.Load(map[string]any{"color": []string{"red", "orange"}}, tags.ToTagChild)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	red, _ := g.Get("red", false)
	orange, _ := g.Get("orange", false)
	g.Connect(red, orange, tags.ToTagUndirected, tags.Weight(0.5))
	g.Connect(orange, "ball", tags.ToEnt, nil)
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildGraph(t), Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Fatalf("ToDOT() = %q, want digraph prefix", dot)
	}
	for _, want := range []string{
		`"tag:color" [label="color"];`,
		`"ent:ball" [shape=ellipse`,
		`"tag:color" -> "tag:red";`,
		`"tag:orange" -> "ent:ball" [style=dashed];`,
		`"tag:orange" -> "tag:red" [dir=none];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}

	// Each connected pair renders exactly once.
	if got := strings.Count(dot, `"tag:color" -> "tag:red"`); got != 1 {
		t.Errorf("color->red rendered %d times, want 1", got)
	}
	if strings.Contains(dot, `"tag:red" -> "tag:color"`) {
		t.Error("inverse edge should not be rendered")
	}
}

func TestToDOTWeights(t *testing.T) {
	dot := ToDOT(buildGraph(t), Options{Weights: true})
	if !strings.Contains(dot, `label="0.5"`) {
		t.Errorf("ToDOT(weights) missing weight label in:\n%s", dot)
	}
}

func TestToDOTAliases(t *testing.T) {
	g := buildGraph(t)
	g.Alias("color", "colour")

	dot := ToDOT(g, Options{Aliases: true})
	if !strings.Contains(dot, "color, colour") {
		t.Errorf("ToDOT(aliases) missing alias list in:\n%s", dot)
	}
}
