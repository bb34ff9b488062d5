package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/tagrel/tagrel/pkg/tags"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Weights includes connection weights as edge labels.
	Weights bool

	// Aliases includes each tag's aliases in its node label.
	Aliases bool
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Tags are drawn as rounded boxes and entities as dashed ellipses. Each
// connected pair appears as one edge: parent→child with an arrow, undirected
// tag pairs without one, and tag→entity edges dashed.
func ToDOT(g *tags.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, t := range g.Tags() {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", nodeID(t), tagLabel(t, opts.Aliases))
	}
	for _, e := range g.TaggedEntities() {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, style=\"dashed,filled\", fillcolor=lightgrey, label=%q];\n",
			nodeID(e), fmt.Sprintf("%v", e))
	}

	buf.WriteString("\n")
	for _, t := range g.Tags() {
		for _, conn := range t.Connections() {
			if !ownsEdge(t, conn) {
				continue
			}
			attrs := edgeAttrs(conn, opts.Weights)
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", nodeID(conn.Source), nodeID(conn.Target), attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ownsEdge picks one side of each stored forward/inverse pair so every
// connection renders exactly once: the parent side of hierarchy edges, the
// lexically smaller tag of undirected pairs, and the tag side of entity
// edges.
func ownsEdge(t *tags.Tag, conn *tags.Connection) bool {
	switch conn.Type {
	case tags.ToTagChild, tags.ToEnt:
		return true
	case tags.ToTagUndirected:
		other := conn.Target.(*tags.Tag)
		return t.Name() < other.Name()
	default:
		return false
	}
}

func tagLabel(t *tags.Tag, withAliases bool) string {
	if !withAliases {
		return t.Name()
	}
	aliases := t.Aliases()
	if len(aliases) == 1 {
		return t.Name()
	}
	return t.Name() + "\n(" + strings.Join(aliases, ", ") + ")"
}

func edgeAttrs(conn *tags.Connection, withWeights bool) string {
	var attrs []string
	switch conn.Type {
	case tags.ToTagUndirected:
		attrs = append(attrs, "dir=none")
	case tags.ToEnt:
		attrs = append(attrs, "style=dashed")
	}
	if withWeights && conn.Weight != nil {
		attrs = append(attrs, fmt.Sprintf("label=%q", strconv.FormatFloat(*conn.Weight, 'g', -1, 64)))
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

// nodeID produces a unique DOT identifier for a tag or entity. Tags and
// entities live in separate namespaces so a tag "ball" and an entity "ball"
// stay distinct nodes.
func nodeID(node any) string {
	if t, ok := node.(*tags.Tag); ok {
		return "tag:" + t.Name()
	}
	return fmt.Sprintf("ent:%v", node)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
