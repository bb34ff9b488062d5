package tags

import (
	"github.com/tagrel/tagrel/pkg/errors"
)

// ConnType identifies the kind of relationship a connection expresses.
//
// Tag-tag connections use one of ToTagUndirected, ToTagParent, or ToTagChild.
// Tag-entity connections use ToEnt (tag as source) or EntToTag (entity as
// source). Entity-entity connections are invalid.
type ConnType int

const (
	// ToTagUndirected is an undirected tag-tag connection.
	ToTagUndirected ConnType = iota + 1
	// ToTagParent connects a child tag to its parent tag.
	ToTagParent
	// ToTagChild connects a parent tag to its child tag.
	ToTagChild
	// ToEnt connects a tag to an entity.
	ToEnt
	// EntToTag connects an entity to a tag.
	EntToTag
)

// connTypeNames holds the wire names used in the serialized graph format.
var connTypeNames = map[ConnType]string{
	ToTagUndirected: "TO_TAG_UNDIRECTED",
	ToTagParent:     "TO_TAG_PARENT",
	ToTagChild:      "TO_TAG_CHILD",
	ToEnt:           "TO_ENT",
	EntToTag:        "ENT_TO_TAG",
}

// String returns the wire name of the connection type (e.g. "TO_TAG_CHILD").
func (t ConnType) String() string {
	if s, ok := connTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseConnType converts a wire name back to a ConnType.
// Fails with WRONG_TYPE for unrecognized names.
func ParseConnType(s string) (ConnType, error) {
	for t, name := range connTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, errors.New(errors.CodeWrongType, "unknown connection type %q", s)
}

// Inverse returns the structurally inverse connection type:
// parent and child swap, the tag-entity directions swap, and
// undirected is its own inverse.
func (t ConnType) Inverse() ConnType {
	switch t {
	case ToTagParent:
		return ToTagChild
	case ToTagChild:
		return ToTagParent
	case ToEnt:
		return EntToTag
	case EntToTag:
		return ToEnt
	default:
		return t
	}
}

// TagTag reports whether the type connects two tags.
func (t ConnType) TagTag() bool {
	return t == ToTagUndirected || t == ToTagParent || t == ToTagChild
}

// TagEntity reports whether the type connects a tag with an entity.
func (t ConnType) TagEntity() bool {
	return t == ToEnt || t == EntToTag
}

// Connection is a typed, optionally weighted edge between two nodes of the
// graph. Each endpoint is either a *Tag or an entity value. Connections are
// always stored as a forward/inverse pair: for every stored A→B there is a
// B→A with the inverse type and the same weight.
type Connection struct {
	Source any
	Target any
	Type   ConnType
	Weight *float64 // nil means unweighted
}

// Weight returns a pointer to w, for use as a Connection weight.
func Weight(w float64) *float64 { return &w }

// NewConnection validates endpoint/type compatibility and returns the
// connection. It does not register anything with the graph; use
// [Graph.Connect] for that.
//
// Fails with WRONG_TYPE when:
//   - both endpoints are tags but the type is not a tag-tag type
//   - neither endpoint is a tag
//   - one endpoint is an entity but the type is not a tag-entity type,
//     or the tag-entity direction does not match the endpoints
func NewConnection(source, target any, typ ConnType, weight *float64) (*Connection, error) {
	sourceTag := isTag(source)
	targetTag := isTag(target)

	switch {
	case sourceTag && targetTag:
		if !typ.TagTag() {
			return nil, errors.New(errors.CodeWrongType,
				"cannot create %s connection between tags %s and %s", typ, nodeLabel(source), nodeLabel(target))
		}
	case !sourceTag && !targetTag:
		return nil, errors.New(errors.CodeWrongType,
			"cannot create %s connection between entities %s and %s", typ, nodeLabel(source), nodeLabel(target))
	default:
		if !typ.TagEntity() {
			return nil, errors.New(errors.CodeWrongType,
				"cannot create %s connection without entities between %s and %s", typ, nodeLabel(source), nodeLabel(target))
		}
		if sourceTag && typ == EntToTag {
			return nil, errors.New(errors.CodeWrongType,
				"cannot create %s connection from tag %s", typ, nodeLabel(source))
		}
		if targetTag && typ == ToEnt {
			return nil, errors.New(errors.CodeWrongType,
				"cannot create %s connection to tag %s", typ, nodeLabel(target))
		}
	}

	return &Connection{Source: source, Target: target, Type: typ, Weight: weight}, nil
}

// Inverse returns a new connection with source and target swapped, the
// inverse type, and the same weight.
func (c *Connection) Inverse() *Connection {
	return &Connection{
		Source: c.Target,
		Target: c.Source,
		Type:   c.Type.Inverse(),
		Weight: c.Weight,
	}
}

// Equal reports whether two connections have identical source, target, type,
// and weight.
func (c *Connection) Equal(other *Connection) bool {
	if other == nil {
		return false
	}
	if c.Source != other.Source || c.Target != other.Target || c.Type != other.Type {
		return false
	}
	switch {
	case c.Weight == nil && other.Weight == nil:
		return true
	case c.Weight == nil || other.Weight == nil:
		return false
	default:
		return *c.Weight == *other.Weight
	}
}

// Compare orders two connections by weight. An unset weight is its own
// sentinel: two unset weights compare equal, and an unset weight sorts
// before any numeric weight (it is not treated as zero).
func (c *Connection) Compare(other *Connection) int {
	switch {
	case c.Weight == nil && other.Weight == nil:
		return 0
	case c.Weight == nil:
		return -1
	case other.Weight == nil:
		return 1
	case *c.Weight < *other.Weight:
		return -1
	case *c.Weight > *other.Weight:
		return 1
	default:
		return 0
	}
}

func isTag(node any) bool {
	_, ok := node.(*Tag)
	return ok
}

// nodeLabel formats a node for log and error messages: tags by name,
// entities by their value.
func nodeLabel(node any) string {
	if t, ok := node.(*Tag); ok {
		return t.Name()
	}
	return entityLabel(node)
}
