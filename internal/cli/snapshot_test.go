package cli

import (
	"context"
	"io"
	"testing"

	"github.com/tagrel/tagrel/pkg/store"
	"github.com/tagrel/tagrel/pkg/tags"
)

func testCLI() *CLI {
	return &CLI{
		Logger: newLogger(io.Discard, LogInfo),
		Config: Config{Store: StoreConfig{Backend: "memory"}},
	}
}

func TestOpenGraphEmpty(t *testing.T) {
	c := testCLI()
	s := store.NewMemoryStore()
	defer s.Close()

	g, err := c.openGraph(context.Background(), s)
	if err != nil {
		t.Fatalf("openGraph() error = %v", err)
	}
	if n := len(g.Tags()); n != 0 {
		t.Errorf("fresh graph has %d tags, want 0", n)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := testCLI()
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	g := c.newGraph()
	color, err := g.NewTag("color", false)
	if err != nil {
		t.Fatal(err)
	}
	red, err := g.NewTag("red", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect(color, red, tags.ToTagChild, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect(red, "ball", tags.ToEnt, nil); err != nil {
		t.Fatal(err)
	}
	if err := g.Alias(color, "colour"); err != nil {
		t.Fatal(err)
	}

	if err := c.saveGraph(ctx, s, g); err != nil {
		t.Fatalf("saveGraph() error = %v", err)
	}

	loaded, err := c.openGraph(ctx, s)
	if err != nil {
		t.Fatalf("openGraph() error = %v", err)
	}

	if n := len(loaded.Tags()); n != 2 {
		t.Fatalf("loaded graph has %d tags, want 2", n)
	}
	if d := loaded.Distance("color", "ball"); d != 2 {
		t.Errorf("Distance(color, ball) = %d, want 2", d)
	}

	// Aliases survive through the snapshot envelope.
	got, err := loaded.Get("colour", false)
	if err != nil {
		t.Fatalf("Get(colour) error = %v", err)
	}
	if got.Name() != "color" {
		t.Errorf("colour resolves to %q, want color", got.Name())
	}
}

func TestOpenGraphBareArray(t *testing.T) {
	c := testCLI()
	s := store.NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	// A plain export (no envelope) can seed the snapshot.
	g := c.newGraph()
	fruit, err := g.NewTag("fruit", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect(fruit, "apple", tags.ToEnt, nil); err != nil {
		t.Fatal(err)
	}
	text, err := g.SaveJSON()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, snapshotKey, []byte(text)); err != nil {
		t.Fatal(err)
	}

	loaded, err := c.openGraph(ctx, s)
	if err != nil {
		t.Fatalf("openGraph() error = %v", err)
	}
	ents, err := loaded.SearchEntitiesByTag("fruit", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ents) != 1 || ents[0] != "apple" {
		t.Errorf("entities = %v, want [apple]", ents)
	}
}

func TestWithGraphPersistsMutations(t *testing.T) {
	c := testCLI()
	dir := t.TempDir()
	c.Config.Store = StoreConfig{Backend: "file", Dir: dir}
	ctx := context.Background()

	err := c.withGraph(ctx, func(g *tags.Graph) (bool, error) {
		_, err := g.NewTag("color", false)
		return true, err
	})
	if err != nil {
		t.Fatalf("withGraph() error = %v", err)
	}

	err = c.withGraph(ctx, func(g *tags.Graph) (bool, error) {
		if _, err := g.Get("color", false); err != nil {
			t.Errorf("tag did not persist: %v", err)
		}
		return false, nil
	})
	if err != nil {
		t.Fatalf("withGraph() error = %v", err)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	c := testCLI()
	c.Config.Store.Backend = "carrier-pigeon"

	if _, err := c.openStore(context.Background()); err == nil {
		t.Error("openStore() should reject unknown backends")
	}
}
