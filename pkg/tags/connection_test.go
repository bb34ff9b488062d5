package tags

import (
	"testing"

	"github.com/tagrel/tagrel/pkg/errors"
)

func newTestTag(g *Graph, name string) *Tag {
	t, err := g.NewTag(name, false)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewConnectionValidation(t *testing.T) {
	g := New(Options{})
	apple := newTestTag(g, "apple")
	fruit := newTestTag(g, "fruit")

	tests := []struct {
		name     string
		source   any
		target   any
		typ      ConnType
		wantCode errors.Code
	}{
		{name: "TagTagUndirected", source: apple, target: fruit, typ: ToTagUndirected},
		{name: "TagTagChild", source: fruit, target: apple, typ: ToTagChild},
		{name: "TagTagWithEntityType", source: apple, target: fruit, typ: ToEnt, wantCode: errors.CodeWrongType},
		{name: "TagToEntity", source: apple, target: "pie", typ: ToEnt},
		{name: "EntityToTag", source: "pie", target: apple, typ: EntToTag},
		{name: "TagToEntityWrongDirection", source: apple, target: "pie", typ: EntToTag, wantCode: errors.CodeWrongType},
		{name: "EntityToTagWrongDirection", source: "pie", target: apple, typ: ToEnt, wantCode: errors.CodeWrongType},
		{name: "TagEntityWithTagType", source: apple, target: "pie", typ: ToTagChild, wantCode: errors.CodeWrongType},
		{name: "EntityToEntity", source: "pie", target: "cake", typ: ToEnt, wantCode: errors.CodeWrongType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := NewConnection(tt.source, tt.target, tt.typ, nil)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("NewConnection() error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConnection() error = %v", err)
			}
			if conn.Type != tt.typ {
				t.Errorf("Type = %s, want %s", conn.Type, tt.typ)
			}
		})
	}
}

func TestConnTypeInverse(t *testing.T) {
	tests := []struct {
		typ  ConnType
		want ConnType
	}{
		{ToTagUndirected, ToTagUndirected},
		{ToTagParent, ToTagChild},
		{ToTagChild, ToTagParent},
		{ToEnt, EntToTag},
		{EntToTag, ToEnt},
	}
	for _, tt := range tests {
		if got := tt.typ.Inverse(); got != tt.want {
			t.Errorf("%s.Inverse() = %s, want %s", tt.typ, got, tt.want)
		}
		// Inversion is an involution.
		if got := tt.typ.Inverse().Inverse(); got != tt.typ {
			t.Errorf("%s.Inverse().Inverse() = %s", tt.typ, got)
		}
	}
}

func TestParseConnType(t *testing.T) {
	for typ, name := range connTypeNames {
		got, err := ParseConnType(name)
		if err != nil {
			t.Fatalf("ParseConnType(%q) error = %v", name, err)
		}
		if got != typ {
			t.Errorf("ParseConnType(%q) = %v, want %v", name, got, typ)
		}
	}
	if _, err := ParseConnType("TO_NOWHERE"); !errors.Is(err, errors.CodeWrongType) {
		t.Errorf("ParseConnType(unknown) error = %v, want WRONG_TYPE", err)
	}
}

func TestConnectionInverse(t *testing.T) {
	g := New(Options{})
	apple := newTestTag(g, "apple")

	conn, err := NewConnection(apple, "pie", ToEnt, Weight(0.5))
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	inv := conn.Inverse()
	if inv.Source != any("pie") || inv.Target != any(apple) {
		t.Errorf("Inverse() endpoints = %v -> %v", inv.Source, inv.Target)
	}
	if inv.Type != EntToTag {
		t.Errorf("Inverse() type = %s, want ENT_TO_TAG", inv.Type)
	}
	if inv.Weight == nil || *inv.Weight != 0.5 {
		t.Errorf("Inverse() weight = %v, want 0.5", inv.Weight)
	}
	if !inv.Inverse().Equal(conn) {
		t.Error("double inverse should equal the original connection")
	}
}

func TestConnectionCompare(t *testing.T) {
	g := New(Options{})
	a := newTestTag(g, "a")
	b := newTestTag(g, "b")

	unweighted, _ := NewConnection(a, b, ToTagUndirected, nil)
	zero, _ := NewConnection(a, b, ToTagUndirected, Weight(0))
	heavy, _ := NewConnection(a, b, ToTagUndirected, Weight(2.5))

	if got := unweighted.Compare(unweighted); got != 0 {
		t.Errorf("unweighted vs unweighted = %d, want 0", got)
	}
	// An unset weight is not zero: it sorts before every number.
	if got := unweighted.Compare(zero); got != -1 {
		t.Errorf("unweighted vs zero = %d, want -1", got)
	}
	if got := zero.Compare(unweighted); got != 1 {
		t.Errorf("zero vs unweighted = %d, want 1", got)
	}
	if got := zero.Compare(heavy); got != -1 {
		t.Errorf("zero vs heavy = %d, want -1", got)
	}
	if got := heavy.Compare(zero); got != 1 {
		t.Errorf("heavy vs zero = %d, want 1", got)
	}
}
