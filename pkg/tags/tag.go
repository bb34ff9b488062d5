package tags

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tagrel/tagrel/pkg/errors"
)

// Tag is a named node in the graph. A tag can be connected to entities to
// categorize them, and to other tags to form hierarchies or undirected
// associations. A tag may be known under several aliases; the alias set
// always contains the current primary name.
//
// Tags are created and owned by a [Graph]; the zero value is not usable.
type Tag struct {
	graph       *Graph
	name        string
	aliases     map[string]struct{}
	connections map[any]*Connection // keyed by connection target
}

// Name returns the tag's primary name.
func (t *Tag) Name() string { return t.name }

// Aliases returns all names resolving to this tag, sorted, including the
// primary name.
func (t *Tag) Aliases() []string {
	out := make([]string, 0, len(t.aliases))
	for a := range t.aliases {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// HasAlias reports whether name is one of the tag's aliases.
// The name is case-folded according to the owning graph's configuration.
func (t *Tag) HasAlias(name string) bool {
	_, ok := t.aliases[t.graph.fold(name)]
	return ok
}

// Connections returns the tag's outgoing connections, sorted by target for
// deterministic iteration. The returned slice is a copy; the connections it
// points at are live.
func (t *Tag) Connections() []*Connection {
	out := make([]*Connection, 0, len(t.connections))
	for _, c := range t.connections {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Connection) int {
		return strings.Compare(nodeSortKey(a.Target), nodeSortKey(b.Target))
	})
	return out
}

// ConnectionTo returns the connection from this tag to target, or nil.
func (t *Tag) ConnectionTo(target any) *Connection {
	return t.connections[target]
}

// ConnectTo connects this tag to another tag or entity.
// Convenience wrapper for [Graph.Connect].
func (t *Tag) ConnectTo(target any, typ ConnType) (*Connection, error) {
	return t.graph.Connect(t, target, typ, nil)
}

// DisconnectTo disconnects this tag from another tag or entity.
// Convenience wrapper for [Graph.Disconnect].
func (t *Tag) DisconnectTo(target any) {
	t.graph.Disconnect(t, target)
}

// DeleteSelf removes this tag from its graph.
// Convenience wrapper for [Graph.Delete].
func (t *Tag) DeleteSelf() {
	t.graph.Delete(t)
}

// Matches reports whether the tag's name matches the given query.
//
// A nil query matches every tag. A string query requires an exact name match
// (case-folded unless the graph is case sensitive). A *regexp.Regexp query
// must match the full name. Any other query type fails with WRONG_TYPE.
func (t *Tag) Matches(query any) (bool, error) {
	m, err := t.graph.compileQuery(query)
	if err != nil {
		return false, err
	}
	return m(t), nil
}

// String returns the tag's serialized JSON form, matching [Graph.SaveTag].
// If the tag holds a connection to an entity that cannot be encoded as JSON,
// the broken connection is rendered as null.
func (t *Tag) String() string {
	s, err := t.graph.SaveTag(t)
	if err != nil {
		return fmt.Sprintf("{%q:null}", t.name)
	}
	return s
}

// tagMatcher is a compiled query predicate over tags.
type tagMatcher func(*Tag) bool

// compileQuery normalizes a query into a matcher, honoring the graph's case
// sensitivity. Accepts nil, string, or *regexp.Regexp.
func (g *Graph) compileQuery(query any) (tagMatcher, error) {
	switch q := query.(type) {
	case nil:
		return func(*Tag) bool { return true }, nil
	case string:
		want := g.fold(q)
		return func(t *Tag) bool { return t.name == want }, nil
	case *regexp.Regexp:
		re := q
		if !g.caseSensitive {
			var err error
			re, err = regexp.Compile("(?i:" + q.String() + ")")
			if err != nil {
				return nil, errors.Wrap(errors.CodeWrongType, err, "invalid query pattern %q", q)
			}
		}
		return func(t *Tag) bool {
			loc := re.FindStringIndex(t.name)
			return loc != nil && loc[0] == 0 && loc[1] == len(t.name)
		}, nil
	default:
		return nil, errors.New(errors.CodeWrongType,
			"invalid query of type %T for match against tag name", query)
	}
}

// nodeSortKey produces a stable ordering key for mixed tag/entity nodes.
// Tags sort by name; entities by their display label.
func nodeSortKey(node any) string {
	if t, ok := node.(*Tag); ok {
		return "tag:" + t.name
	}
	return "ent:" + entityLabel(node)
}
