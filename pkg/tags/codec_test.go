package tags

import (
	"strings"
	"testing"

	"github.com/tagrel/tagrel/pkg/errors"
)

func TestSaveTag(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	red := newTestTag(g, "red")
	g.Connect(color, red, ToTagChild, nil)
	g.Connect(color, "ball", ToEnt, Weight(0.5))

	got, err := g.SaveTag("color")
	if err != nil {
		t.Fatalf("SaveTag() error = %v", err)
	}
	// Connections sort entities before tags.
	want := `{"color":[["color","TO_ENT",0.5,"ball"],["color","TO_TAG_CHILD",null,"red"]]}`
	if got != want {
		t.Errorf("SaveTag() = %s\nwant        %s", got, want)
	}

	if _, err := g.SaveTag("nope"); !errors.Is(err, errors.CodeMissing) {
		t.Errorf("SaveTag(missing) error = %v, want MISSING", err)
	}
}

func TestSaveTagUnserializableEntity(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	// Channels are comparable, so connect succeeds, but they have no JSON
	// representation, so saving must fail.
	if _, err := g.Connect(color, make(chan int), ToEnt, nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if _, err := g.SaveTag("color"); !errors.Is(err, errors.CodeFormat) {
		t.Errorf("SaveTag() error = %v, want FORMAT", err)
	}
	if _, err := g.SaveJSON(); !errors.Is(err, errors.CodeFormat) {
		t.Errorf("SaveJSON() error = %v, want FORMAT", err)
	}
}

func TestRoundTrip(t *testing.T) {
	g := New(Options{})
	_, err := g.Load(map[string]any{
		"color": []string{"red", "orange"},
		"fruit": []string{"orange"},
	}, ToTagChild)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	orange, _ := g.Get("orange", false)
	g.Connect(orange, "ball", ToEnt, Weight(2))
	g.Connect(orange, float64(7), ToEnt, nil)

	saved, err := g.SaveJSON()
	if err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	g.Clear()
	loaded, err := g.LoadJSON(saved, true, false)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if len(loaded) != 4 {
		t.Fatalf("LoadJSON() = %d tags, want 4", len(loaded))
	}

	// Same hierarchy.
	color, _ := g.Get("color", false)
	orange2, _ := g.Get("orange", false)
	if conn := color.ConnectionTo(orange2); conn == nil || conn.Type != ToTagChild {
		t.Errorf("color->orange = %v, want TO_TAG_CHILD", conn)
	}
	// Same entity attachments, weights included.
	conn := orange2.ConnectionTo("ball")
	if conn == nil || conn.Weight == nil || *conn.Weight != 2 {
		t.Errorf("orange->ball = %v, want weight 2", conn)
	}
	if orange2.ConnectionTo(float64(7)) == nil {
		t.Error("numeric entity should keep its identity across a round trip")
	}

	// The round trip is a fixed point.
	saved2, err := g.SaveJSON()
	if err != nil {
		t.Fatalf("second SaveJSON() error = %v", err)
	}
	if saved2 != saved {
		t.Errorf("second save differs:\n  first  %s\n  second %s", saved, saved2)
	}
}

func TestRoundTripCompositeEntity(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	g.Connect(color, JSONValue(`{"id":42}`), ToEnt, nil)

	saved, err := g.SaveJSON()
	if err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}
	if !strings.Contains(saved, `{"id":42}`) {
		t.Fatalf("SaveJSON() = %s, want embedded entity json", saved)
	}

	g.Clear()
	if _, err := g.LoadJSON(saved, true, false); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	color2, _ := g.Get("color", false)
	if color2.ConnectionTo(JSONValue(`{"id":42}`)) == nil {
		t.Error("composite entity should keep its identity across a round trip")
	}
}

func TestLoadTag(t *testing.T) {
	g := New(Options{})

	loaded, err := g.LoadTag(`{"color":[["color","TO_TAG_CHILD",null,"red"]]}`, true, false)
	if err != nil {
		t.Fatalf("LoadTag() error = %v", err)
	}
	if loaded.Name() != "color" {
		t.Errorf("Name() = %q, want %q", loaded.Name(), "color")
	}
	red, err := g.Get("red", false)
	if err != nil {
		t.Fatalf("tag-tag quad should create its target: %v", err)
	}
	if loaded.ConnectionTo(red) == nil {
		t.Error("LoadTag() should replay the connection")
	}

	// An existing tag is only reused with getIfExists.
	if _, err := g.LoadTag(`{"color":[]}`, false, false); !errors.Is(err, errors.CodeCollision) {
		t.Errorf("LoadTag(existing, strict) error = %v, want COLLISION", err)
	}
}

func TestLoadTagLegacyTriples(t *testing.T) {
	g := New(Options{})

	loaded, err := g.LoadTag(`{"color":[["color","TO_TAG_CHILD","red"],["color","TO_ENT","ball"]]}`, true, false)
	if err != nil {
		t.Fatalf("LoadTag(triples) error = %v", err)
	}
	red, _ := g.Get("red", false)
	if conn := loaded.ConnectionTo(red); conn == nil || conn.Weight != nil {
		t.Errorf("legacy triple = %v, want unweighted connection", conn)
	}
	if loaded.ConnectionTo("ball") == nil {
		t.Error("legacy entity triple should attach the entity")
	}
}

func TestLoadJSONMalformed(t *testing.T) {
	g := New(Options{})

	tests := []struct {
		name string
		text string
	}{
		{name: "NotJSON", text: `not json`},
		{name: "NotAnArray", text: `{"color":[]}`},
		{name: "MultiKeyObject", text: `[{"a":[],"b":[]}]`},
		{name: "BadQuadShape", text: `[{"color":[["color"]]}]`},
		{name: "UnknownType", text: `[{"color":[["color","TO_NOWHERE",null,"red"]]}]`},
		{name: "BadWeight", text: `[{"color":[["color","TO_TAG_CHILD","heavy","red"]]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.LoadJSON(tt.text, true, false); !errors.Is(err, errors.CodeFormat) {
				t.Errorf("LoadJSON(%s) error = %v, want FORMAT", tt.text, err)
			}
		})
	}
}

func TestLoadJSONSkipBadConns(t *testing.T) {
	text := `[{"color":[["color","TO_NOWHERE",null,"red"],["color","TO_TAG_CHILD",null,"yellow"]]}]`

	g := New(Options{})
	if _, err := g.LoadJSON(text, true, false); !errors.Is(err, errors.CodeFormat) {
		t.Fatalf("strict LoadJSON() error = %v, want FORMAT", err)
	}

	g = New(Options{})
	loaded, err := g.LoadJSON(text, true, true)
	if err != nil {
		t.Fatalf("tolerant LoadJSON() error = %v", err)
	}
	color := loaded[0]
	yellow, err := g.Get("yellow", false)
	if err != nil {
		t.Fatalf("good quad should still load: %v", err)
	}
	if color.ConnectionTo(yellow) == nil {
		t.Error("good quad should be replayed despite the bad one")
	}
}
