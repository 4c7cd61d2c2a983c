package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/modkit/pkg/deptree"
	"github.com/matzehuels/modkit/pkg/modinfo"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the mod name and error details to node labels.
	// When false, only the mod id is shown.
	Detailed bool
	// Focus restricts the diagram to these mods, their dependencies and
	// their dependents. Empty means every mod.
	Focus []string
}

// Node colors.
const (
	availableFill   = "white"
	unavailableFill = "#f8d7da"
	unavailableLine = "#b02a37"
	conflictColor   = "#b02a37"
)

// ToDOT converts a dependency tree to Graphviz DOT format. Edges point from
// a mod to the mods it depends on; conflicts are dashed, undirected and do
// not affect ranking. reg supplies names and core flags and may be nil.
func ToDOT(t *deptree.Tree, reg *modinfo.Registry, opts Options) string {
	keep := focusSet(t, opts.Focus)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, key := range t.Keys() {
		if !keep(key) {
			continue
		}
		n := t.Node(key)
		attrs := fmtAttrs(n, info(reg, key), opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", key, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, key := range t.Keys() {
		if !keep(key) {
			continue
		}
		n := t.Node(key)
		for _, p := range n.Parents() {
			if keep(p.Key) {
				fmt.Fprintf(&buf, "  %q -> %q;\n", key, p.Key)
			}
		}
		for _, c := range n.Conflicts() {
			if key < c.Key && keep(c.Key) {
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=%q, dir=none, constraint=false];\n", key, c.Key, conflictColor)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func info(reg *modinfo.Registry, key string) *modinfo.Info {
	if reg == nil {
		return nil
	}
	m, _ := reg.Get(key)
	return m
}

func focusSet(t *deptree.Tree, focus []string) func(string) bool {
	if len(focus) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]bool)
	for _, key := range focus {
		if t.Node(key) == nil {
			continue
		}
		set[key] = true
		for _, k := range t.DependenciesOf(key) {
			set[k] = true
		}
		for _, k := range t.DependentsOf(key) {
			set[k] = true
		}
	}
	return func(key string) bool { return set[key] }
}

func fmtLabel(n *deptree.Node, m *modinfo.Info, detailed bool) string {
	if !detailed {
		return n.Key
	}
	parts := []string{n.Key}
	if m != nil && m.Name != "" {
		parts = append(parts, m.Name)
	}
	if n.HasErrors() {
		parts = append(parts, strings.Split(n.ErrorString(), "\n")...)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *deptree.Node, m *modinfo.Info, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, m, detailed))}
	if !n.IsAvailable() {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", unavailableFill), fmt.Sprintf("color=%q", unavailableLine))
	} else {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", availableFill))
	}
	if m != nil && m.Core {
		attrs = append(attrs, "penwidth=2")
	}
	if m != nil && m.Obsolete {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
