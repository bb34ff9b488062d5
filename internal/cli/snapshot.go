package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tagrel/tagrel/pkg/store"
	"github.com/tagrel/tagrel/pkg/tags"
)

// snapshot is the persisted form of a graph. The serialized quad format
// covers connections only, so aliases ride alongside it: primary name to the
// extra aliases.
type snapshot struct {
	Graph   json.RawMessage     `json:"graph"`
	Aliases map[string][]string `json:"aliases,omitempty"`
}

// openStore creates the snapshot store selected by the config.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = dataDir()
			if err != nil {
				return nil, fmt.Errorf("resolve data dir: %w", err)
			}
		}
		return store.NewFileStore(dir)
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// openGraph loads the persisted graph snapshot into a fresh graph.
// A missing snapshot yields an empty graph. Bare exported arrays are
// accepted alongside the envelope form, so a snapshot file can be seeded
// from an export.
func (c *CLI) openGraph(ctx context.Context, s store.Store) (*tags.Graph, error) {
	g := c.newGraph()

	data, err := s.Load(ctx, snapshotKey)
	if errors.Is(err, store.ErrNotFound) {
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := snapshot{Graph: data}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	}
	if _, err := g.LoadJSON(string(snap.Graph), true, false); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for name, aliases := range snap.Aliases {
		for _, alias := range aliases {
			if err := g.Alias(name, alias); err != nil {
				return nil, fmt.Errorf("restore alias %s: %w", alias, err)
			}
		}
	}
	return g, nil
}

// saveGraph persists the graph back to the store.
func (c *CLI) saveGraph(ctx context.Context, s store.Store, g *tags.Graph) error {
	text, err := g.SaveJSON()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	snap := snapshot{Graph: json.RawMessage(text)}
	for _, t := range g.Tags() {
		var extra []string
		for _, alias := range t.Aliases() {
			if alias != t.Name() {
				extra = append(extra, alias)
			}
		}
		if len(extra) > 0 {
			if snap.Aliases == nil {
				snap.Aliases = make(map[string][]string)
			}
			snap.Aliases[t.Name()] = extra
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Save(ctx, snapshotKey, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// withGraph runs fn against the persisted graph and, when fn reports a
// mutation, writes the snapshot back.
func (c *CLI) withGraph(ctx context.Context, fn func(g *tags.Graph) (mutated bool, err error)) error {
	s, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := c.openGraph(ctx, s)
	if err != nil {
		return err
	}
	mutated, err := fn(g)
	if err != nil {
		return err
	}
	if mutated {
		return c.saveGraph(ctx, s, g)
	}
	return nil
}
