// Package tags implements a relational tagging graph.
//
// A [Graph] holds named tags and the typed, optionally weighted connections
// between them and to arbitrary externally-owned entities. Tags form
// hierarchies (parent/child) or flat associations (undirected), and every
// connection is mirrored by its inverse on the other endpoint, so the graph
// can be traversed from either side.
//
// # Building a graph
//
//	g := tags.New(tags.Options{})
//	g.Load(map[string]any{
//	    "color": []string{"red", "orange", "yellow"},
//	    "fruit": []string{"apple", "banana", "orange"},
//	}, tags.ToTagChild)
//
//	orange, _ := g.Get("orange", false)
//	g.Connect(orange, "ball", tags.ToEnt, nil)
//
// # Querying
//
// [Graph.Path] and [Graph.Distance] find shortest routes between any two
// nodes, ignoring connection direction. [Graph.SearchEntitiesByTag] and
// [Graph.SearchTagsOfEntity] walk the hierarchy in one direction: entities
// under a tag and its descendants, or the tags above an entity.
//
// # Serialization
//
// [Graph.SaveJSON] and [Graph.LoadJSON] round-trip the whole graph through a
// flat JSON text form; see codec.go for the format.
package tags
