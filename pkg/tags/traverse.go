package tags

import (
	"time"

	"github.com/tagrel/tagrel/pkg/observability"
)

// Known reports whether a node is part of the graph: a registered tag, or an
// entity with at least one tag connection.
func (g *Graph) Known(node any) bool {
	if t, ok := node.(*Tag); ok {
		return t != nil && g.tags[t.name] == t
	}
	if node == nil {
		return false
	}
	_, ok := g.entities[node]
	return ok
}

// Path returns a shortest path between two nodes as the node sequence from a
// to b inclusive, treating every connection as traversable regardless of type
// or direction. Aliases are names of the same node, so two aliased names have
// a path of length one.
//
// Returns [a] when b is nil or equal to a (and a is known), and an empty
// slice when either node is unknown or no path exists. Nodes may be *Tag
// values, tag names, or entities.
func (g *Graph) Path(a, b any) []any {
	start, ok := g.resolveNode(a)
	if !ok {
		return nil
	}
	if b == nil {
		return []any{start}
	}
	goal, ok := g.resolveNode(b)
	if !ok {
		return nil
	}
	if start == goal {
		return []any{start}
	}

	// Breadth-first from start so the first route found is a shortest one.
	type step struct {
		node any
		prev *step
	}
	visited := map[any]struct{}{start: {}}
	queue := []*step{{node: start}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, conn := range g.neighborConnections(cur.node) {
			next := conn.Target
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			s := &step{node: next, prev: cur}
			if next == goal {
				var path []any
				for ; s != nil; s = s.prev {
					path = append(path, s.node)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, s)
		}
	}
	return nil
}

// Distance returns the number of connections on a shortest path between two
// nodes: 0 for a node and itself (or an alias of itself), -1 when no path
// exists or either node is unknown.
func (g *Graph) Distance(a, b any) int {
	path := g.Path(a, b)
	return len(path) - 1
}

// resolveNode maps a path endpoint to its graph node: tag names resolve
// through the registry, tags and entities must be known. A string that is
// not a tag name may still be a string-valued entity.
func (g *Graph) resolveNode(node any) (any, bool) {
	if name, ok := node.(string); ok {
		if t, found := g.tags[g.fold(name)]; found {
			return t, true
		}
	}
	if !g.Known(node) {
		return nil, false
	}
	return node, true
}

// neighborConnections returns the outgoing connections of any known node.
func (g *Graph) neighborConnections(node any) []*Connection {
	if t, ok := node.(*Tag); ok {
		return t.Connections()
	}
	return g.EntityConnections(node)
}

// SearchEntitiesByTag returns all entities reachable from the tag by
// following tag-tag connections of the given direction and then tag-entity
// connections, in a stable order. A zero direction defaults to ToTagChild,
// i.e. entities tagged by the tag or any of its descendants.
// Fails with MISSING when the tag does not exist.
func (g *Graph) SearchEntitiesByTag(tagOrName any, direction ConnType) ([]any, error) {
	paths, err := g.SearchEntityPathsByTag(tagOrName, direction)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.End())
	}
	return out, nil
}

// SearchEntityPathsByTag is like [Graph.SearchEntitiesByTag] but returns the
// connection path from the start tag to each entity found.
func (g *Graph) SearchEntityPathsByTag(tagOrName any, direction ConnType) ([]SearchPath, error) {
	start := time.Now()
	t, err := g.resolve(tagOrName)
	if err != nil {
		return nil, err
	}
	if direction == 0 {
		direction = ToTagChild
	}

	paths := g.searchDescendants(t, nil, direction, false, true)
	observability.GraphEvents().OnSearch("entities-by-tag", len(paths), time.Since(start))
	return paths, nil
}

// SearchTagsOfEntity returns all tags from which the entity is reachable,
// i.e. its direct tags plus their ancestors when direction is ToTagParent
// (the default for a zero direction). The query narrows results by tag name:
// nil matches all, a string matches exactly, a *regexp.Regexp must match the
// full name. Results are in a stable order.
func (g *Graph) SearchTagsOfEntity(entity any, query any, direction ConnType) ([]*Tag, error) {
	paths, err := g.SearchTagPathsOfEntity(entity, query, direction)
	if err != nil {
		return nil, err
	}
	out := make([]*Tag, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.End().(*Tag))
	}
	return out, nil
}

// SearchTagPathsOfEntity is like [Graph.SearchTagsOfEntity] but returns the
// connection path from the entity to each tag found.
func (g *Graph) SearchTagPathsOfEntity(entity any, query any, direction ConnType) ([]SearchPath, error) {
	start := time.Now()
	matcher, err := g.compileQuery(query)
	if err != nil {
		return nil, err
	}
	if direction == 0 {
		direction = ToTagParent
	}

	var paths []SearchPath
	// An entity has no tag-tag edges of its own, so seed one sub-search per
	// attached tag, each prefixed with the entity→tag hop. The seed tag is a
	// result in its own right before its relatives are walked, and a tag
	// reachable from several seeds is reported once, via the first seed.
	seen := make(map[*Tag]struct{})
	report := func(p SearchPath) {
		end := p.End().(*Tag)
		if _, ok := seen[end]; ok {
			return
		}
		seen[end] = struct{}{}
		if matcher(end) {
			paths = append(paths, p)
		}
	}
	for _, seed := range g.EntityConnections(entity) {
		report(SearchPath{seed})
		for _, p := range g.searchDescendants(seed.Target.(*Tag), SearchPath{seed}, direction, true, false) {
			report(p)
		}
	}
	observability.GraphEvents().OnSearch("tags-of-entity", len(paths), time.Since(start))
	return paths, nil
}

// SearchPath is a sequence of adjacent connections recorded by a descendant
// search. Each connection's target is the next connection's source.
type SearchPath []*Connection

// End returns the final node of the path.
func (p SearchPath) End() any {
	return p[len(p)-1].Target
}

// Nodes returns the node sequence of the path, from its first source to its
// last target.
func (p SearchPath) Nodes() []any {
	out := make([]any, 0, len(p)+1)
	out = append(out, p[0].Source)
	for _, c := range p {
		out = append(out, c.Target)
	}
	return out
}

// searchDescendants walks outward from a tag breadth-first, following
// tag-tag connections of the given direction plus tag-entity connections,
// and collects one path per node found. includeTags and includeEntities
// select which node kinds are reported; entities are always leaves and never
// expanded. The prefix, when non-nil, is prepended to every reported path
// and its nodes count as visited. Each node is visited once, so cycles
// terminate, and results come out in level order with siblings sorted.
func (g *Graph) searchDescendants(start *Tag, prefix SearchPath, direction ConnType, includeTags, includeEntities bool) []SearchPath {
	visited := map[any]struct{}{start: {}}
	for _, c := range prefix {
		visited[c.Source] = struct{}{}
	}

	type frame struct {
		tag  *Tag
		path SearchPath
	}
	var paths []SearchPath
	queue := []frame{{tag: start, path: prefix}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, conn := range cur.tag.Connections() {
			if conn.Type != direction && conn.Type != ToEnt {
				continue
			}
			if _, seen := visited[conn.Target]; seen {
				continue
			}
			visited[conn.Target] = struct{}{}

			path := make(SearchPath, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			path = append(path, conn)

			if next, ok := conn.Target.(*Tag); ok {
				if includeTags {
					paths = append(paths, path)
				}
				queue = append(queue, frame{tag: next, path: path})
			} else if includeEntities {
				paths = append(paths, path)
			}
		}
	}
	return paths
}
