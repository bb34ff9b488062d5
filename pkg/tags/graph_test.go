package tags

import (
	"testing"

	"github.com/tagrel/tagrel/pkg/errors"
)

func TestNewTag(t *testing.T) {
	g := New(Options{})

	apple, err := g.NewTag("Apple", false)
	if err != nil {
		t.Fatalf("NewTag() error = %v", err)
	}
	if apple.Name() != "apple" {
		t.Errorf("Name() = %q, want case-folded %q", apple.Name(), "apple")
	}

	if _, err := g.NewTag("APPLE", false); !errors.Is(err, errors.CodeCollision) {
		t.Errorf("duplicate NewTag() error = %v, want COLLISION", err)
	}
	again, err := g.NewTag("apple", true)
	if err != nil {
		t.Fatalf("NewTag(getIfExists) error = %v", err)
	}
	if again != apple {
		t.Error("NewTag(getIfExists) should return the existing tag")
	}
}

func TestNewTagCaseSensitive(t *testing.T) {
	g := New(Options{CaseSensitive: true})

	if _, err := g.NewTag("Apple", false); err != nil {
		t.Fatalf("NewTag() error = %v", err)
	}
	if _, err := g.NewTag("apple", false); err != nil {
		t.Fatalf("NewTag() with different case error = %v", err)
	}
	if len(g.Tags()) != 2 {
		t.Errorf("Tags() = %d tags, want 2", len(g.Tags()))
	}
}

func TestGet(t *testing.T) {
	g := New(Options{})

	if _, err := g.Get("apple", false); !errors.Is(err, errors.CodeMissing) {
		t.Errorf("Get(missing) error = %v, want MISSING", err)
	}

	apple, err := g.Get("apple", true)
	if err != nil {
		t.Fatalf("Get(newIfMissing) error = %v", err)
	}
	got, err := g.Get("APPLE", false)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != apple {
		t.Error("Get() should resolve case-insensitively to the same tag")
	}
}

func TestAlias(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	sound := newTestTag(g, "sound")

	if err := g.Alias(color, "colour"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}
	got, err := g.Get("colour", false)
	if err != nil || got != color {
		t.Fatalf("Get(alias) = %v, %v; want the aliased tag", got, err)
	}
	if !color.HasAlias("COLOUR") {
		t.Error("HasAlias() should fold case")
	}

	// Re-aliasing to the same tag is a no-op.
	if err := g.Alias("color", "colour"); err != nil {
		t.Errorf("re-Alias() error = %v", err)
	}

	// A plain alias moves between tags; a primary name does not.
	if err := g.Alias(sound, "colour"); err != nil {
		t.Fatalf("Alias(move) error = %v", err)
	}
	if color.HasAlias("colour") {
		t.Error("moved alias should no longer resolve to the old tag")
	}
	if !sound.HasAlias("colour") {
		t.Error("moved alias should resolve to the new tag")
	}
	if err := g.Alias(sound, "color"); !errors.Is(err, errors.CodeCollision) {
		t.Errorf("Alias(primary name) error = %v, want COLLISION", err)
	}

	if err := g.Alias("nope", "x"); !errors.Is(err, errors.CodeMissing) {
		t.Errorf("Alias(missing tag) error = %v, want MISSING", err)
	}
}

func TestRemoveAlias(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	if err := g.Alias(color, "colour"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}

	if err := g.RemoveAlias("colour", DefaultRemoveAliasOptions); err != nil {
		t.Fatalf("RemoveAlias() error = %v", err)
	}
	if _, err := g.Get("colour", false); !errors.Is(err, errors.CodeMissing) {
		t.Error("removed alias should no longer resolve")
	}
	if _, err := g.Get("color", false); err != nil {
		t.Error("primary name should survive alias removal")
	}

	// Unknown alias: skipped by default, MISSING when strict.
	if err := g.RemoveAlias("colour", DefaultRemoveAliasOptions); err != nil {
		t.Errorf("RemoveAlias(missing, skip) error = %v", err)
	}
	strict := RemoveAliasOptions{ErrorIfLast: true}
	if err := g.RemoveAlias("colour", strict); !errors.Is(err, errors.CodeMissing) {
		t.Errorf("RemoveAlias(missing, strict) error = %v, want MISSING", err)
	}

	// The last alias of a tag is protected.
	if err := g.RemoveAlias("color", DefaultRemoveAliasOptions); !errors.Is(err, errors.CodeDeleteDanger) {
		t.Errorf("RemoveAlias(last) error = %v, want DELETE_DANGER", err)
	}

	// The primary name cannot be removed even when other aliases remain.
	if err := g.Alias(color, "colour"); err != nil {
		t.Fatalf("Alias() error = %v", err)
	}
	if err := g.RemoveAlias("color", DefaultRemoveAliasOptions); !errors.Is(err, errors.CodeWrongType) {
		t.Errorf("RemoveAlias(primary) error = %v, want WRONG_TYPE", err)
	}
}

func TestRemoveAliasRenameTo(t *testing.T) {
	g := New(Options{})
	newTestTag(g, "color")

	opts := DefaultRemoveAliasOptions
	opts.RenameTo = "hue"
	if err := g.RemoveAlias("color", opts); err != nil {
		t.Fatalf("RemoveAlias(renameTo) error = %v", err)
	}

	hue, err := g.Get("hue", false)
	if err != nil {
		t.Fatalf("Get(hue) error = %v", err)
	}
	if hue.Name() != "hue" {
		t.Errorf("Name() = %q, want %q", hue.Name(), "hue")
	}
	if hue.HasAlias("color") {
		t.Error("old name should be gone after rename-and-remove")
	}
}

func TestRename(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	newTestTag(g, "sound")

	if err := g.Rename(color, "hue"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if color.Name() != "hue" {
		t.Errorf("Name() = %q, want %q", color.Name(), "hue")
	}
	// The previous name stays usable as an alias.
	got, err := g.Get("color", false)
	if err != nil || got != color {
		t.Fatalf("Get(old name) = %v, %v; want renamed tag", got, err)
	}

	if err := g.Rename(color, "sound"); !errors.Is(err, errors.CodeCollision) {
		t.Errorf("Rename(taken name) error = %v, want COLLISION", err)
	}
	if err := g.Rename("nope", "x"); !errors.Is(err, errors.CodeMissing) {
		t.Errorf("Rename(missing) error = %v, want MISSING", err)
	}
}

func TestConnect(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	red := newTestTag(g, "red")

	conn, err := g.Connect(color, red, ToTagChild, nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if conn.Type != ToTagChild {
		t.Errorf("Type = %s, want TO_TAG_CHILD", conn.Type)
	}
	// Both sides exist, with inverse types.
	inv := red.ConnectionTo(color)
	if inv == nil || inv.Type != ToTagParent {
		t.Fatalf("inverse connection = %v, want TO_TAG_PARENT", inv)
	}

	// Reconnecting overwrites instead of duplicating.
	if _, err := g.Connect(color, red, ToTagUndirected, Weight(1.5)); err != nil {
		t.Fatalf("reconnect error = %v", err)
	}
	if len(color.Connections()) != 1 {
		t.Fatalf("Connections() = %d, want 1 after reconnect", len(color.Connections()))
	}
	got := color.ConnectionTo(red)
	if got.Type != ToTagUndirected || got.Weight == nil || *got.Weight != 1.5 {
		t.Errorf("reconnect result = %s weight %v, want TO_TAG_UNDIRECTED weight 1.5", got.Type, got.Weight)
	}
	if inv := red.ConnectionTo(color); inv.Type != ToTagUndirected {
		t.Errorf("inverse after reconnect = %s, want TO_TAG_UNDIRECTED", inv.Type)
	}
}

func TestConnectDefaults(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	red := newTestTag(g, "red")

	conn, err := g.Connect(color, red, 0, nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if conn.Type != ToTagUndirected {
		t.Errorf("default tag-tag type = %s, want TO_TAG_UNDIRECTED", conn.Type)
	}

	conn, err = g.Connect(color, "ball", 0, nil)
	if err != nil {
		t.Fatalf("Connect(entity) error = %v", err)
	}
	if conn.Type != ToEnt {
		t.Errorf("default tag-entity type = %s, want TO_ENT", conn.Type)
	}
}

func TestConnectEntity(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")

	if _, err := g.Connect(color, "ball", ToEnt, nil); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conns := g.EntityConnections("ball")
	if len(conns) != 1 {
		t.Fatalf("EntityConnections() = %d, want 1", len(conns))
	}
	if conns[0].Type != EntToTag || conns[0].Target != any(color) {
		t.Errorf("entity inverse = %s -> %v, want ENT_TO_TAG -> color", conns[0].Type, conns[0].Target)
	}

	// Entities must be comparable so the graph can track them by identity.
	if _, err := g.Connect(color, []string{"nope"}, ToEnt, nil); !errors.Is(err, errors.CodeWrongType) {
		t.Errorf("Connect(slice entity) error = %v, want WRONG_TYPE", err)
	}
	if _, err := g.Connect(color, nil, ToEnt, nil); !errors.Is(err, errors.CodeWrongType) {
		t.Errorf("Connect(nil entity) error = %v, want WRONG_TYPE", err)
	}
}

func TestDisconnect(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	red := newTestTag(g, "red")
	g.Connect(color, red, ToTagChild, nil)
	g.Connect(color, "ball", ToEnt, nil)
	g.Connect(red, "ball", ToEnt, nil)

	g.Disconnect(color, red)
	if color.ConnectionTo(red) != nil || red.ConnectionTo(color) != nil {
		t.Error("Disconnect() should remove both sides")
	}

	// Disconnecting an unconnected pair is a no-op.
	g.Disconnect(color, red)

	// The entity stays indexed while one connection remains.
	g.Disconnect(color, "ball")
	if !g.Known("ball") {
		t.Fatal("entity with a remaining connection should stay known")
	}
	g.Disconnect(red, "ball")
	if g.Known("ball") {
		t.Error("entity with no remaining connections should be forgotten")
	}
}

func TestDisconnectEntity(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	red := newTestTag(g, "red")
	g.Connect(color, "ball", ToEnt, nil)
	g.Connect(red, "ball", ToEnt, nil)

	g.DisconnectEntity("ball")
	if g.Known("ball") {
		t.Error("DisconnectEntity() should forget the entity")
	}
	if color.ConnectionTo("ball") != nil || red.ConnectionTo("ball") != nil {
		t.Error("DisconnectEntity() should remove every tag's side")
	}

	// Idempotent.
	g.DisconnectEntity("ball")
}

func TestDelete(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	red := newTestTag(g, "red")
	g.Alias(color, "colour")
	g.Connect(color, red, ToTagChild, nil)
	g.Connect(color, "ball", ToEnt, nil)

	g.Delete("colour")

	if _, err := g.Get("color", false); !errors.Is(err, errors.CodeMissing) {
		t.Error("deleted tag should not resolve by name")
	}
	if _, err := g.Get("colour", false); !errors.Is(err, errors.CodeMissing) {
		t.Error("deleted tag should not resolve by alias")
	}
	if red.ConnectionTo(color) != nil {
		t.Error("Delete() should sever inverse connections on neighbors")
	}
	if g.Known("ball") {
		t.Error("Delete() should drop an entity whose only tag is gone")
	}

	// Deleting a nonexistent tag is a no-op.
	g.Delete("color")
}

func TestClear(t *testing.T) {
	g := New(Options{})
	color := newTestTag(g, "color")
	newTestTag(g, "red")
	g.Alias(color, "colour")
	g.Connect(color, "ball", ToEnt, nil)

	if got := g.Clear(); got != 2 {
		t.Errorf("Clear() = %d, want 2 distinct tags", got)
	}
	if len(g.Tags()) != 0 || len(g.TaggedEntities()) != 0 {
		t.Error("Clear() should empty the graph")
	}
	if got := g.Clear(); got != 0 {
		t.Errorf("Clear() on empty graph = %d, want 0", got)
	}
}

func TestLoadNames(t *testing.T) {
	g := New(Options{})
	loaded, err := g.LoadNames([]string{"color", "sound", "color"})
	if err != nil {
		t.Fatalf("LoadNames() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("LoadNames() = %d tags, want 2 (duplicates deduplicated)", len(loaded))
	}
}

func TestLoad(t *testing.T) {
	g := New(Options{})
	_, err := g.Load(map[string]any{
		"color": []string{"red", "orange", "yellow"},
		"fruit": []any{"apple", "banana", "orange"},
		"sound": "loud",
	}, 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	color, _ := g.Get("color", false)
	orange, _ := g.Get("orange", false)
	conn := color.ConnectionTo(orange)
	if conn == nil || conn.Type != ToTagChild {
		t.Fatalf("color->orange = %v, want TO_TAG_CHILD", conn)
	}
	if inv := orange.ConnectionTo(color); inv == nil || inv.Type != ToTagParent {
		t.Fatalf("orange->color = %v, want TO_TAG_PARENT", inv)
	}
	// A shared child belongs to both hierarchies.
	fruit, _ := g.Get("fruit", false)
	if fruit.ConnectionTo(orange) == nil {
		t.Error("orange should also be a child of fruit")
	}

	if _, err := g.Load(map[string]any{"bad": 42}, 0); !errors.Is(err, errors.CodeWrongType) {
		t.Errorf("Load(bad shape) error = %v, want WRONG_TYPE", err)
	}
	if _, err := g.Load(map[string]any{"bad": []any{42}}, 0); !errors.Is(err, errors.CodeWrongType) {
		t.Errorf("Load(bad list element) error = %v, want WRONG_TYPE", err)
	}
}

func TestTagsSorted(t *testing.T) {
	g := New(Options{})
	for _, name := range []string{"zebra", "apple", "mango"} {
		newTestTag(g, name)
	}
	got := g.Tags()
	want := []string{"apple", "mango", "zebra"}
	for i, tag := range got {
		if tag.Name() != want[i] {
			t.Fatalf("Tags()[%d] = %q, want %q", i, tag.Name(), want[i])
		}
	}
}
