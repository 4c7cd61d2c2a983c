// Package nodelink renders the mod dependency tree as a node-link diagram.
//
// # Usage
//
// Convert a tree to DOT, then render it with the embedded Graphviz:
//
//	dot := nodelink.ToDOT(tree, registry, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// Each mod is a rounded box. Edges point from a mod to the mods it depends
// on, so with rankdir=BT the base game sits at the bottom. Unavailable mods
// (missing dependencies, cycles, conflicts) are filled red, core mods get a
// heavier outline and obsolete mods a dashed one. Conflicts are drawn as
// dashed red lines that do not influence ranking.
//
// With Options.Detailed, labels also carry the mod name and the error
// lines from [deptree.Node.ErrorString].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. The DOT source can also be fed to external Graphviz tools.
package nodelink
