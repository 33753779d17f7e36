package mdast

// Kind identifies the markdown construct a Node was parsed from.
type Kind int

const (
	KindOther Kind = iota
	KindHeading
	KindParagraph
	KindList
	KindListItem
	KindCodeBlock
	KindBlockquote
	KindTable
	KindTableRow
	KindThematicBreak
	KindHTML
)

var kindNames = map[Kind]string{
	KindOther:         "other",
	KindHeading:       "heading",
	KindParagraph:     "paragraph",
	KindList:          "list",
	KindListItem:      "listItem",
	KindCodeBlock:     "codeBlock",
	KindBlockquote:    "blockquote",
	KindTable:         "table",
	KindTableRow:      "tableRow",
	KindThematicBreak: "thematicBreak",
	KindHTML:          "html",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Span is a half-open byte range [Start, End) into the parsed source.
type Span struct {
	Start int
	End   int
}

// NoSpan marks a node whose position is unknown.
var NoSpan = Span{Start: -1, End: -1}

// Valid reports whether the span carries usable position data.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Len returns the byte length of a valid span, 0 otherwise.
func (s Span) Len() int {
	if !s.Valid() {
		return 0
	}
	return s.End - s.Start
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Valid() && o.Valid() && o.Start >= s.Start && o.End <= s.End
}

// Node is a block-level markdown construct.
type Node struct {
	Kind     Kind
	Depth    int    // Heading level (1-6); 0 for every other kind
	Span     Span   // Source range, including markdown syntax
	Text     string // Visible text of a leaf, syntax stripped
	Children []*Node
}

// Extent returns the node's source span.
func (n *Node) Extent() Span {
	return n.Span
}

// IsLeaf reports whether the node has no structural children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}
