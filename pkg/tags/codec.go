package tags

import (
	"encoding/json"

	"github.com/tagrel/tagrel/pkg/errors"
)

// Serialized graph format
//
// A graph is a JSON array with one object per tag. Each object maps the
// tag's primary name to its outgoing connections, serialized as quads:
//
//	[{"color": [
//	    ["color", "TO_TAG_CHILD", null, "red"],
//	    ["color", "TO_ENT", 0.5, {"id": 42}]
//	]}]
//
// Tag endpoints are encoded as their name string; entity endpoints use the
// entity's own JSON representation. The third element is the connection
// weight, null when unset. Three-element quads [source, type, target] from
// older serializers are accepted on load and treated as unweighted.

// SaveTag serializes one tag with its outgoing connections, sorted by
// target. Fails with FORMAT when a connected entity has no JSON
// representation.
func (g *Graph) SaveTag(tagOrName any) (string, error) {
	t, err := g.resolve(tagOrName)
	if err != nil {
		return "", err
	}
	obj, err := g.saveTagObject(t)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", errors.Wrap(errors.CodeFormat, err, "cannot serialize tag %s", t.name)
	}
	return string(data), nil
}

// SaveJSON serializes the whole graph as a JSON array of tag objects, sorted
// by tag name. Fails with FORMAT when any connected entity has no JSON
// representation; nothing is emitted partially.
func (g *Graph) SaveJSON() (string, error) {
	tags := g.Tags()
	out := make([]map[string][]json.RawMessage, 0, len(tags))
	for _, t := range tags {
		obj, err := g.saveTagObject(t)
		if err != nil {
			return "", err
		}
		out = append(out, obj)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(errors.CodeFormat, err, "cannot serialize graph")
	}
	return string(data), nil
}

// saveTagObject builds the single-key tag object for the serialized form.
func (g *Graph) saveTagObject(t *Tag) (map[string][]json.RawMessage, error) {
	conns := t.Connections()
	quads := make([]json.RawMessage, 0, len(conns))
	for _, conn := range conns {
		var target json.RawMessage
		if targetTag, ok := conn.Target.(*Tag); ok {
			target, _ = json.Marshal(targetTag.name)
		} else {
			encoded, err := encodeEntity(conn.Target)
			if err != nil {
				return nil, err
			}
			target = encoded
		}

		quad, err := json.Marshal([]any{t.name, conn.Type.String(), conn.Weight, target})
		if err != nil {
			return nil, errors.Wrap(errors.CodeFormat, err, "cannot serialize connection of tag %s", t.name)
		}
		quads = append(quads, quad)
	}
	return map[string][]json.RawMessage{t.name: quads}, nil
}

// LoadTag reconstructs one tag from its serialized object (as produced by
// [Graph.SaveTag]) and replays each connection quad through [Graph.Connect].
//
// The tag itself is resolved through [Graph.Get]: an existing tag of the
// same name is reused when getIfExists is true, otherwise LoadTag fails with
// COLLISION. Tag-tag quads create their target tag when missing. Malformed
// input fails with FORMAT; a quad that cannot be replayed is skipped with a
// warning when skipBadConns is true and fails with FORMAT otherwise.
func (g *Graph) LoadTag(text string, getIfExists, skipBadConns bool) (*Tag, error) {
	var obj map[string][]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, errors.Wrap(errors.CodeFormat, err, "malformed tag json")
	}
	if len(obj) != 1 {
		return nil, errors.New(errors.CodeFormat, "tag json must hold exactly one tag, got %d", len(obj))
	}
	for name, quads := range obj {
		return g.loadTagObject(name, quads, getIfExists, skipBadConns)
	}
	panic("unreachable")
}

// LoadJSON reconstructs a whole graph from its serialized array (as produced
// by [Graph.SaveJSON]) into the receiver and returns the loaded tags sorted
// by name. Tags already in the graph are merged per getIfExists; see
// [Graph.LoadTag] for the per-quad semantics. Malformed top-level JSON fails
// with FORMAT.
func (g *Graph) LoadJSON(text string, getIfExists, skipBadConns bool) ([]*Tag, error) {
	var objs []map[string][]json.RawMessage
	if err := json.Unmarshal([]byte(text), &objs); err != nil {
		return nil, errors.Wrap(errors.CodeFormat, err, "malformed graph json")
	}

	g.logger.Debug("loading serialized graph", "tags", len(objs))
	loaded := make([]*Tag, 0, len(objs))
	for _, obj := range objs {
		if len(obj) != 1 {
			return nil, errors.New(errors.CodeFormat, "tag object must hold exactly one tag, got %d", len(obj))
		}
		for name, quads := range obj {
			t, err := g.loadTagObject(name, quads, getIfExists, skipBadConns)
			if err != nil {
				return nil, err
			}
			loaded = append(loaded, t)
		}
	}
	return loaded, nil
}

// loadTagObject resolves the named tag and replays its connection quads.
func (g *Graph) loadTagObject(name string, quads []json.RawMessage, getIfExists, skipBadConns bool) (*Tag, error) {
	t, err := g.NewTag(name, getIfExists)
	if err != nil {
		return nil, err
	}

	for _, raw := range quads {
		if err := g.loadQuad(t, raw); err != nil {
			if skipBadConns {
				g.logger.Warn("skipping bad connection", "tag", t.name, "err", err)
				continue
			}
			if errors.Is(err, errors.CodeFormat) {
				return nil, err
			}
			return nil, errors.Wrap(errors.CodeFormat, err, "cannot replay connection of tag %s", t.name)
		}
	}
	return t, nil
}

// loadQuad replays one serialized connection entry against its tag. Accepts
// the 4-element [source, type, weight, target] form and the legacy
// 3-element [source, type, target] form.
func (g *Graph) loadQuad(t *Tag, raw json.RawMessage) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errors.Wrap(errors.CodeFormat, err, "malformed connection entry %s", raw)
	}

	var typeField, weightField, targetField json.RawMessage
	switch len(fields) {
	case 4:
		typeField, weightField, targetField = fields[1], fields[2], fields[3]
	case 3:
		typeField, targetField = fields[1], fields[2]
	default:
		return errors.New(errors.CodeFormat, "connection entry has %d elements, want 3 or 4", len(fields))
	}

	var typeName string
	if err := json.Unmarshal(typeField, &typeName); err != nil {
		return errors.Wrap(errors.CodeFormat, err, "malformed connection type %s", typeField)
	}
	typ, err := ParseConnType(typeName)
	if err != nil {
		return err
	}

	var weight *float64
	if weightField != nil {
		if err := json.Unmarshal(weightField, &weight); err != nil {
			return errors.Wrap(errors.CodeFormat, err, "malformed connection weight %s", weightField)
		}
	}

	if typ.TagTag() {
		var targetName string
		if err := json.Unmarshal(targetField, &targetName); err != nil {
			return errors.Wrap(errors.CodeFormat, err, "malformed tag target %s", targetField)
		}
		target, err := g.Get(targetName, true)
		if err != nil {
			return err
		}
		_, err = g.Connect(t, target, typ, weight)
		return err
	}

	entity, err := DecodeEntity(targetField)
	if err != nil {
		return err
	}
	conn, err := NewConnection(t, entity, typ, weight)
	if err != nil {
		return err
	}
	_, err = g.ConnectConn(conn)
	return err
}
