// Package section regroups a flat block sequence into a heading hierarchy.
package section

import (
	"strings"

	"github.com/dgallion1/chunkdown/internal/mdast"
)

// Element is either a *mdast.Node or a *Section.
type Element interface {
	Extent() mdast.Span
}

// Section is a heading together with everything it owns: the blocks that
// follow it up to the next heading of equal or shallower depth, and nested
// subsections for deeper headings.
type Section struct {
	Depth    int         // Heading depth; 0 for the implicit root
	Heading  *mdast.Node // nil for the root
	Children []Element
	Span     mdast.Span
}

// Extent returns the section's source span.
func (s *Section) Extent() mdast.Span {
	return s.Span
}

// Elements returns the heading (if any) followed by the children, in document order.
func (s *Section) Elements() []Element {
	if s.Heading == nil {
		return s.Children
	}
	out := make([]Element, 0, len(s.Children)+1)
	out = append(out, s.Heading)
	return append(out, s.Children...)
}

// Sectionize builds the section tree for a top-level block sequence. The
// returned root has depth 0 and no heading.
func Sectionize(blocks []*mdast.Node) *Section {
	root := &Section{}
	build(root, blocks)
	root.Span = unionSpan(root)
	return root
}

func build(sec *Section, blocks []*mdast.Node) {
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if b.Kind != mdast.KindHeading {
			sec.Children = append(sec.Children, b)
			i++
			continue
		}

		j := i + 1
		for j < len(blocks) && !closes(blocks[j], b.Depth) {
			j++
		}
		child := &Section{Depth: b.Depth, Heading: b}
		build(child, blocks[i+1:j])
		child.Span = unionSpan(child)
		sec.Children = append(sec.Children, child)
		i = j
	}
}

// closes reports whether n ends a section opened by a heading at depth.
func closes(n *mdast.Node, depth int) bool {
	switch n.Kind {
	case mdast.KindThematicBreak:
		return true
	case mdast.KindHeading:
		return n.Depth <= depth
	}
	return false
}

// unionSpan covers the heading and every element with known position. Elements
// without spans are ignored; a section with no known positions gets NoSpan.
func unionSpan(s *Section) mdast.Span {
	span := mdast.NoSpan
	for _, e := range s.Elements() {
		sp := e.Extent()
		if !sp.Valid() {
			continue
		}
		if !span.Valid() {
			span = sp
			continue
		}
		if sp.Start < span.Start {
			span.Start = sp.Start
		}
		if sp.End > span.End {
			span.End = sp.End
		}
	}
	return span
}

// Outline renders the heading hierarchy, one indented line per section.
func Outline(root *Section) []string {
	var lines []string
	var walk func(s *Section, indent int)
	walk = func(s *Section, indent int) {
		for _, e := range s.Children {
			sub, ok := e.(*Section)
			if !ok {
				continue
			}
			title := sub.Heading.Text
			if title == "" {
				title = "(untitled)"
			}
			lines = append(lines, strings.Repeat("  ", indent)+strings.Repeat("#", sub.Depth)+" "+title)
			walk(sub, indent+1)
		}
	}
	walk(root, 0)
	return lines
}
