package mdast

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MaxNesting bounds how deeply containers (lists, blockquotes) may nest.
const MaxNesting = 1000

// ErrParse is returned when markdown cannot be turned into a block tree.
var ErrParse = errors.New("markdown parse failed")

// Parse converts markdown source into its top-level block sequence.
func Parse(src string) (nodes []*Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			nodes = nil
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	source := []byte(src)
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	doc := md.Parser().Parse(text.NewReader(source))

	c := &converter{src: source}
	return c.children(doc, Span{Start: 0, End: len(source)}, 0)
}

type converter struct {
	src []byte
}

// children converts the child blocks of parent. Each child owns the source from
// its first line up to the next child's first line, trimmed of trailing
// whitespace, so markers goldmark does not attach to segments (fences, list
// bullets, "> " prefixes, table delimiter rows) stay with their block.
func (c *converter) children(parent ast.Node, bounds Span, depth int) ([]*Node, error) {
	if depth > MaxNesting {
		return nil, fmt.Errorf("%w: nesting deeper than %d levels", ErrParse, MaxNesting)
	}

	var kids []ast.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		kids = append(kids, n)
	}
	if len(kids) == 0 {
		return nil, nil
	}

	starts := c.starts(kids, bounds)
	out := make([]*Node, 0, len(kids))
	for i, k := range kids {
		end := bounds.End
		if i+1 < len(kids) {
			end = starts[i+1]
		}
		node := &Node{
			Kind: kindOf(k),
			Span: Span{Start: starts[i], End: c.trimRight(starts[i], end)},
		}
		if h, ok := k.(*ast.Heading); ok {
			node.Depth = h.Level
		}

		if isContainer(node.Kind) {
			ch, err := c.children(k, node.Span, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = ch
		} else {
			node.Text = c.text(k)
		}
		out = append(out, node)
	}
	return out, nil
}

// starts resolves the first-line offset of every sibling.
func (c *converter) starts(kids []ast.Node, bounds Span) []int {
	starts := make([]int, len(kids))
	known := make([]bool, len(kids))
	for i, k := range kids {
		if p := c.firstByte(k); p >= 0 {
			starts[i] = c.lineStart(p)
			known[i] = true
		}
	}

	// Nodes without segments (thematic breaks, empty headings) take the last
	// non-blank line before whatever follows them.
	next := bounds.End
	for i := len(kids) - 1; i >= 0; i-- {
		if !known[i] {
			starts[i] = c.lastLineStart(bounds.Start, next)
		}
		next = starts[i]
	}

	// Text goldmark drops from the tree (link reference definitions) belongs
	// to the first sibling.
	if first := c.firstLineStart(bounds.Start, starts[0]); first < starts[0] {
		starts[0] = first
	}

	prev := bounds.Start
	for i := range starts {
		if starts[i] < prev {
			starts[i] = prev
		}
		if starts[i] > bounds.End {
			starts[i] = bounds.End
		}
		prev = starts[i]
	}
	return starts
}

// firstByte returns the smallest source offset attached to n, or -1.
func (c *converter) firstByte(n ast.Node) int {
	switch v := n.(type) {
	case *ast.Text:
		return v.Segment.Start
	case *ast.FencedCodeBlock:
		if v.Info != nil {
			return v.Info.Segment.Start
		}
		if v.Lines().Len() > 0 {
			// The opening fence is the line right before the first content line.
			ls := c.lineStart(v.Lines().At(0).Start)
			if ls > 0 {
				return c.lineStart(ls - 1)
			}
			return ls
		}
		return -1
	}

	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start
	}
	best := -1
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if p := c.firstByte(ch); p >= 0 && (best < 0 || p < best) {
			best = p
		}
	}
	return best
}

func (c *converter) lineStart(p int) int {
	if p > len(c.src) {
		p = len(c.src)
	}
	return bytes.LastIndexByte(c.src[:p], '\n') + 1
}

// firstLineStart returns the start of the first non-blank line in [lo, hi), or hi.
func (c *converter) firstLineStart(lo, hi int) int {
	ls := lo
	for i := lo; i < hi; i++ {
		switch c.src[i] {
		case '\n':
			ls = i + 1
		case ' ', '\t', '\r', '\f', '\v':
		default:
			return ls
		}
	}
	return hi
}

// lastLineStart returns the start of the last non-blank line in [lo, hi), or hi.
func (c *converter) lastLineStart(lo, hi int) int {
	e := c.trimRight(lo, hi)
	if e == lo {
		return hi
	}
	if ls := c.lineStart(e - 1); ls > lo {
		return ls
	}
	return lo
}

func (c *converter) trimRight(lo, hi int) int {
	for hi > lo && isSpace(c.src[hi-1]) {
		hi--
	}
	return hi
}

func (c *converter) text(n ast.Node) string {
	var buf bytes.Buffer
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(c.src))
		}
	default:
		c.inlineText(n, &buf)
	}
	return strings.TrimSpace(buf.String())
}

func (c *converter) inlineText(n ast.Node, buf *bytes.Buffer) {
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch v := ch.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(c.src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.AutoLink:
			buf.Write(v.URL(c.src))
		case *east.TableCell:
			c.inlineText(v, buf)
			buf.WriteByte(' ')
		default:
			c.inlineText(ch, buf)
		}
	}
}

func kindOf(n ast.Node) Kind {
	switch n.Kind() {
	case ast.KindHeading:
		return KindHeading
	case ast.KindParagraph, ast.KindTextBlock:
		return KindParagraph
	case ast.KindList:
		return KindList
	case ast.KindListItem:
		return KindListItem
	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		return KindCodeBlock
	case ast.KindBlockquote:
		return KindBlockquote
	case ast.KindThematicBreak:
		return KindThematicBreak
	case ast.KindHTMLBlock:
		return KindHTML
	case east.KindTable:
		return KindTable
	case east.KindTableHeader, east.KindTableRow:
		return KindTableRow
	}
	return KindOther
}

func isContainer(k Kind) bool {
	switch k {
	case KindList, KindListItem, KindBlockquote, KindTable:
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
