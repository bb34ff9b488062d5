package tags

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tagrel/tagrel/pkg/errors"
	"github.com/tagrel/tagrel/pkg/observability"
)

// Options configures a new Graph.
type Options struct {
	// CaseSensitive controls whether tag names and aliases are compared
	// exactly. When false (the default), names are folded to lower case.
	CaseSensitive bool

	// Logger receives warnings for idempotent no-ops (deleting a missing
	// tag, disconnecting an unknown edge) and debug output for mutations.
	// Defaults to log.Default().
	Logger *log.Logger
}

// Graph is a relational tagging graph: a registry of named tags, the
// connections between them, and the entities attached to them.
//
// All operations are methods on a Graph instance, so multiple independent
// graphs can coexist in one process. A Graph is not safe for concurrent use
// without external synchronization: connecting or disconnecting updates both
// sides of an edge non-atomically.
type Graph struct {
	caseSensitive bool
	logger        *log.Logger

	// tags maps every known name AND alias to its tag. Several keys may
	// point at the same *Tag; each tag's alias set mirrors its keys here.
	tags map[string]*Tag

	// entities is the entity index: for every entity with at least one tag
	// connection, the inverse (entity→tag) connection per tag.
	entities map[any]map[*Tag]*Connection
}

// New creates an empty graph.
func New(opts Options) *Graph {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Graph{
		caseSensitive: opts.CaseSensitive,
		logger:        logger,
		tags:          make(map[string]*Tag),
		entities:      make(map[any]map[*Tag]*Connection),
	}
}

// CaseSensitive reports whether tag names are compared exactly.
func (g *Graph) CaseSensitive() bool { return g.caseSensitive }

// fold normalizes a name according to the graph's case sensitivity.
func (g *Graph) fold(name string) string {
	if g.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

// resolve converts a *Tag or name string into a registered tag.
// Fails with MISSING when the tag is not in the registry, and with
// WRONG_TYPE for any other argument type.
func (g *Graph) resolve(tagOrName any) (*Tag, error) {
	switch v := tagOrName.(type) {
	case *Tag:
		if v == nil || g.tags[v.name] != v {
			return nil, errors.New(errors.CodeMissing, "tag %s not found", nodeLabel(v))
		}
		return v, nil
	case string:
		t, ok := g.tags[g.fold(v)]
		if !ok {
			return nil, errors.New(errors.CodeMissing, "tag %s not found", v)
		}
		return t, nil
	default:
		return nil, errors.New(errors.CodeWrongType, "expected tag or name, got %T", tagOrName)
	}
}

// NewTag creates a new tag with the given name.
//
// When a tag already exists under that name or alias, it is returned as-is
// if getIfExists is true; otherwise NewTag fails with COLLISION.
func (g *Graph) NewTag(name string, getIfExists bool) (*Tag, error) {
	name = g.fold(name)
	if existing, ok := g.tags[name]; ok {
		if getIfExists {
			return existing, nil
		}
		return nil, errors.New(errors.CodeCollision, "tag %s already exists", name)
	}

	t := &Tag{
		graph:       g,
		name:        name,
		aliases:     map[string]struct{}{name: {}},
		connections: make(map[any]*Connection),
	}
	g.tags[name] = t
	g.logger.Debug("created new tag", "name", name)
	observability.GraphEvents().OnTagCreated(name)
	return t, nil
}

// Get resolves a name or alias to an existing tag, creating one when missing
// and newIfMissing is true. Fails with MISSING otherwise.
func (g *Graph) Get(name string, newIfMissing bool) (*Tag, error) {
	folded := g.fold(name)
	if t, ok := g.tags[folded]; ok {
		return t, nil
	}
	if newIfMissing {
		return g.NewTag(folded, true)
	}
	return nil, errors.New(errors.CodeMissing, "tag %s not found", name)
}

// Alias registers newAlias as an alternate name for the given tag.
// Re-aliasing to the same tag is a no-op. An alias currently held by another
// tag is moved, unless it is that tag's primary name, which fails with
// COLLISION. Fails with MISSING when the base tag does not exist.
func (g *Graph) Alias(tagOrName any, newAlias string) error {
	t, err := g.resolve(tagOrName)
	if err != nil {
		return err
	}

	newAlias = g.fold(newAlias)
	if other, ok := g.tags[newAlias]; ok {
		if other == t {
			return nil
		}
		if other.name == newAlias {
			return errors.New(errors.CodeCollision,
				"alias %s is the primary name of another tag", newAlias)
		}
		// Move the alias: it lives in exactly one place at a time.
		delete(other.aliases, newAlias)
	}

	g.tags[newAlias] = t
	t.aliases[newAlias] = struct{}{}
	g.logger.Debug("added alias", "tag", t.name, "alias", newAlias)
	return nil
}

// RemoveAliasOptions controls [Graph.RemoveAlias].
type RemoveAliasOptions struct {
	// ErrorIfLast makes removal of a tag's only remaining alias fail with
	// DELETE_DANGER instead of orphaning the tag.
	ErrorIfLast bool

	// SkipIfMissing makes removal of an unknown alias a logged no-op
	// instead of a MISSING failure.
	SkipIfMissing bool

	// RenameTo, when non-empty, renames the tag before removing the alias,
	// so that removing a primary or last alias is safe.
	RenameTo string
}

// DefaultRemoveAliasOptions matches the historical defaults:
// refuse to orphan a tag, ignore unknown aliases.
var DefaultRemoveAliasOptions = RemoveAliasOptions{ErrorIfLast: true, SkipIfMissing: true}

// RemoveAlias removes one alias mapping.
//
// Unknown aliases are a logged no-op or a MISSING failure depending on
// opts.SkipIfMissing. Removing the tag's only remaining alias fails with
// DELETE_DANGER when opts.ErrorIfLast is set, and removing the primary name
// fails with WRONG_TYPE. Pass opts.RenameTo to rename the tag before the
// alias is dropped, which makes either removal safe.
func (g *Graph) RemoveAlias(alias string, opts RemoveAliasOptions) error {
	alias = g.fold(alias)
	t, ok := g.tags[alias]
	if !ok {
		if opts.SkipIfMissing {
			g.logger.Warn("skip removal of unknown alias", "alias", alias)
			return nil
		}
		return errors.New(errors.CodeMissing, "alias %s not found", alias)
	}

	if opts.RenameTo != "" {
		if err := g.Rename(t, opts.RenameTo); err != nil {
			return err
		}
	}
	if len(t.aliases) == 1 && opts.ErrorIfLast {
		return errors.New(errors.CodeDeleteDanger,
			"removing %s would orphan tag %s; pass a replacement name", alias, t.name)
	}
	if alias == t.name {
		return errors.New(errors.CodeWrongType,
			"%s is the primary name of its tag; rename instead of removing", alias)
	}

	delete(t.aliases, alias)
	delete(g.tags, alias)
	g.logger.Debug("removed alias", "tag", t.name, "alias", alias)
	return nil
}

// Rename makes newName the tag's primary name. The previous name is kept as
// an alias, as are all other aliases. Fails with MISSING when the tag does
// not exist and with COLLISION when newName already resolves to another tag.
func (g *Graph) Rename(tagOrName any, newName string) error {
	t, err := g.resolve(tagOrName)
	if err != nil {
		return err
	}

	newName = g.fold(newName)
	if other, ok := g.tags[newName]; ok && other != t {
		return errors.New(errors.CodeCollision, "tag %s already exists", newName)
	}

	g.tags[newName] = t
	t.aliases[newName] = struct{}{}
	t.name = newName
	g.logger.Debug("renamed tag", "name", newName, "aliases", len(t.aliases))
	return nil
}

// Delete removes a tag from the graph, severing every connection it holds in
// both directions and dropping all of its aliases. Deleting a nonexistent
// tag is a logged no-op.
func (g *Graph) Delete(tagOrName any) {
	t, err := g.resolve(tagOrName)
	if err != nil {
		g.logger.Warn("skip delete of nonexistent tag", "tag", nodeLabel(tagOrName))
		return
	}

	g.logger.Debug("deleting tag", "name", t.name)
	for target := range t.connections {
		if other, ok := target.(*Tag); ok {
			delete(other.connections, t)
		} else {
			g.dropEntityConnection(target, t)
		}
	}
	for alias := range t.aliases {
		delete(g.tags, alias)
	}
	observability.GraphEvents().OnTagDeleted(t.name)
}

// Clear removes every tag and entity membership from the graph and returns
// the number of distinct tags removed. Entity values themselves are never
// mutated.
func (g *Graph) Clear() int {
	n := len(g.distinctTags())
	g.tags = make(map[string]*Tag)
	g.entities = make(map[any]map[*Tag]*Connection)
	return n
}

// LoadNames bulk-creates tags from a flat list of names with no
// relationships between them. Duplicate names are loaded once.
// Returns all tags in the graph, both new and pre-existing.
func (g *Graph) LoadNames(names []string) ([]*Tag, error) {
	g.logger.Debug("loading tags from flat list", "count", len(names))
	for _, name := range names {
		if _, err := g.NewTag(name, true); err != nil {
			return nil, err
		}
	}
	return g.Tags(), nil
}

// Load bulk-creates tags from a hierarchy: each key is a tag name and each
// value is a single tag name or a list of tag names related to it by
// tagTagType. The default type ToTagChild means the key is the parent of the
// value. Values that are not a string, []string, or []any of strings fail
// with WRONG_TYPE. Returns all tags in the graph.
func (g *Graph) Load(hierarchy map[string]any, tagTagType ConnType) ([]*Tag, error) {
	if tagTagType == 0 {
		tagTagType = ToTagChild
	}
	g.logger.Debug("loading tags from hierarchy", "count", len(hierarchy))

	for _, name := range slices.Sorted(maps.Keys(hierarchy)) {
		parent, err := g.NewTag(name, true)
		if err != nil {
			return nil, err
		}

		var children []string
		switch value := hierarchy[name].(type) {
		case string:
			children = []string{value}
		case []string:
			children = value
		case []any:
			for _, v := range value {
				s, ok := v.(string)
				if !ok {
					return nil, errors.New(errors.CodeWrongType, "unsupported target type %T", v)
				}
				children = append(children, s)
			}
		default:
			return nil, errors.New(errors.CodeWrongType, "unsupported target type %T", value)
		}

		for _, childName := range children {
			child, err := g.Get(childName, true)
			if err != nil {
				return nil, err
			}
			if _, err := g.Connect(parent, child, tagTagType, nil); err != nil {
				return nil, err
			}
		}
	}
	return g.Tags(), nil
}

// Connect creates a connection from tag to target (a tag or an entity) and
// its inverse on the target's side; both sides are stored or neither.
//
// A zero typ selects the default: ToTagUndirected for tag targets, ToEnt for
// entity targets. Reconnecting an existing pair overwrites the previous
// connection's type and weight; no duplicate edges are created. The first
// connection of an entity adds it to the entity index.
func (g *Graph) Connect(tag *Tag, target any, typ ConnType, weight *float64) (*Connection, error) {
	if tag == nil {
		return nil, errors.New(errors.CodeWrongType, "cannot connect nil tag")
	}

	targetTag, isTagTarget := target.(*Tag)
	if typ == 0 {
		if isTagTarget {
			typ = ToTagUndirected
		} else {
			typ = ToEnt
		}
	}
	if !isTagTarget {
		if err := checkEntity(target); err != nil {
			return nil, err
		}
	}

	conn, err := NewConnection(tag, target, typ, weight)
	if err != nil {
		return nil, err
	}
	tag.connections[target] = conn

	if isTagTarget {
		targetTag.connections[tag] = conn.Inverse()
	} else {
		if _, ok := g.entities[target]; !ok {
			g.logger.Debug("new tagged entity", "entity", entityLabel(target))
			g.entities[target] = make(map[*Tag]*Connection)
		}
		g.entities[target][tag] = conn.Inverse()
	}

	observability.GraphEvents().OnConnect(nodeLabel(tag), nodeLabel(target), typ.String())
	return conn, nil
}

// ConnectConn replays a connection record through [Graph.Connect], using the
// stored source, target, type, and weight. Records with an entity source are
// replayed from the tag side via their inverse.
func (g *Graph) ConnectConn(conn *Connection) (*Connection, error) {
	if source, ok := conn.Source.(*Tag); ok {
		return g.Connect(source, conn.Target, conn.Type, conn.Weight)
	}
	return g.ConnectConn(conn.Inverse())
}

// Disconnect removes the connection between tag and target in both
// directions. Disconnecting a pair that is not connected is a logged no-op.
// Severing an entity's last connection removes it from the entity index.
func (g *Graph) Disconnect(tag *Tag, target any) {
	if tag == nil {
		return
	}
	if _, ok := tag.connections[target]; !ok {
		g.logger.Warn("skip disconnect of unconnected pair",
			"tag", tag.name, "target", nodeLabel(target))
		return
	}

	delete(tag.connections, target)
	if targetTag, ok := target.(*Tag); ok {
		delete(targetTag.connections, tag)
	} else {
		g.dropEntityConnection(target, tag)
	}
	observability.GraphEvents().OnDisconnect(nodeLabel(tag), nodeLabel(target))
}

// DisconnectConn removes the connection described by a connection record.
// Records with an entity source are resolved via their inverse.
func (g *Graph) DisconnectConn(conn *Connection) {
	if source, ok := conn.Source.(*Tag); ok {
		g.Disconnect(source, conn.Target)
		return
	}
	g.DisconnectConn(conn.Inverse())
}

// DisconnectEntity removes every tag's connection to the entity and drops it
// from the entity index. Disconnecting an already-untagged entity is a
// logged no-op.
func (g *Graph) DisconnectEntity(entity any) {
	conns, ok := g.entities[entity]
	if !ok {
		g.logger.Warn("entity already untagged", "entity", entityLabel(entity))
		return
	}
	for tag := range conns {
		delete(tag.connections, entity)
	}
	delete(g.entities, entity)
	observability.GraphEvents().OnDisconnect(entityLabel(entity), "*")
}

// Tags returns every distinct tag, sorted by name.
func (g *Graph) Tags() []*Tag {
	out := g.distinctTags()
	slices.SortFunc(out, func(a, b *Tag) int { return strings.Compare(a.name, b.name) })
	return out
}

// TaggedEntities returns every entity currently attached to at least one
// tag, in a stable order.
func (g *Graph) TaggedEntities() []any {
	out := make([]any, 0, len(g.entities))
	for e := range g.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b any) int {
		return strings.Compare(entityLabel(a), entityLabel(b))
	})
	return out
}

// EntityConnections returns the entity's inverse (entity→tag) connections,
// sorted by tag name. Returns nil for an untagged entity.
func (g *Graph) EntityConnections(entity any) []*Connection {
	conns, ok := g.entities[entity]
	if !ok {
		return nil
	}
	out := make([]*Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Connection) int {
		return strings.Compare(nodeSortKey(a.Target), nodeSortKey(b.Target))
	})
	return out
}

// dropEntityConnection removes one tag's entry from the entity index,
// dropping the whole index entry when it was the last one.
func (g *Graph) dropEntityConnection(entity any, tag *Tag) {
	conns, ok := g.entities[entity]
	if !ok {
		g.logger.Warn("entity already untagged", "entity", entityLabel(entity))
		return
	}
	delete(conns, tag)
	if len(conns) == 0 {
		delete(g.entities, entity)
	}
}

// distinctTags deduplicates the name/alias registry into unique tags.
func (g *Graph) distinctTags() []*Tag {
	seen := make(map[*Tag]struct{}, len(g.tags))
	out := make([]*Tag, 0, len(g.tags))
	for _, t := range g.tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
