package chunkdown

import (
	"bytes"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// ContentSize counts the runes of visible text in a markdown fragment:
// markers, fences, link targets and HTML tags are not counted.
func ContentSize(md string) int {
	src := []byte(md)
	p := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)).Parser()
	doc := p.Parse(text.NewReader(src))

	n := 0
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			n += utf8.RuneCount(v.Segment.Value(src))
		case *ast.String:
			n += utf8.RuneCount(v.Value)
		case *ast.AutoLink:
			n += utf8.RuneCount(v.URL(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			n += utf8.RuneCount(bytes.TrimRight(lineBytes(node, src), "\n"))
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			n += htmlTextSize(lineBytes(node, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return n
}

func lineBytes(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

// htmlTextSize counts the text between tags of an HTML fragment.
func htmlTextSize(b []byte) int {
	z := html.NewTokenizer(bytes.NewReader(b))
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return n
		case html.TextToken:
			n += utf8.RuneCount(bytes.TrimSpace(z.Text()))
		}
	}
}
