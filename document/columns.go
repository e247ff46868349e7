package document

// Two-column layout reconstruction. The legacy system marks the switch point
// between columns with a single break marker; the target platform wants
// balanced markers around columned content (begin, switch, end). This pass is
// strictly separate from conversion and optional: it only rewrites the node
// list when column breaks are present.

// NormalizeColumns returns a new node list with column boundaries balanced. A
// break separates the block immediately before it from the block immediately
// after it; a boundary marker is inserted in front of the columned region
// when single-column content precedes it, and after the region when content
// follows. Input is never mutated.
func NormalizeColumns(nodes []Node) []Node {
	first, last := -1, -1
	for i, node := range nodes {
		if node.Kind != NodeColumnBreak {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return nodes
	}

	// region covers the blocks adjacent to the outermost separators
	start := first - 1
	if start < 0 {
		start = 0
	}
	end := last + 1
	if end > len(nodes)-1 {
		end = len(nodes) - 1
	}

	out := make([]Node, 0, len(nodes)+2)
	out = append(out, nodes[:start]...)
	if start > 0 {
		out = append(out, NewColumnBreakNode())
	}
	out = append(out, nodes[start:end+1]...)
	if end < len(nodes)-1 {
		out = append(out, NewColumnBreakNode())
	}
	out = append(out, nodes[end+1:]...)
	return out
}
