package block

// Kind tags the variant of a content unit so traversals can be exhaustive.
type Kind string

const (
	KindParagraph    Kind = "paragraph"
	KindHeading      Kind = "heading"
	KindBulletItem   Kind = "bulletListItem"
	KindNumberedItem Kind = "numberedListItem"
	KindQuote        Kind = "quote"
	KindCode         Kind = "codeBlock"
	KindDivider      Kind = "divider"
)

// Block is one content unit of an editable document: a tagged variant with
// an associated text value and ordered children.
type Block struct {
	Kind     Kind
	Text     string
	Level    int // heading depth, list indentation
	Language string
	Children []*Block
}

func New(kind Kind, text string) *Block {
	return &Block{
		Kind: kind,
		Text: text,
	}
}

func NewHeading(level int, text string) *Block {
	return &Block{
		Kind:  KindHeading,
		Text:  text,
		Level: level,
	}
}

func (b *Block) Append(children ...*Block) {
	b.Children = append(b.Children, children...)
}

// Walk visits b and its descendants depth-first. Returning false stops the
// walk.
func (b *Block) Walk(fn func(b *Block) bool) bool {
	if b == nil {
		return true
	}

	if !fn(b) {
		return false
	}

	for _, c := range b.Children {
		if !c.Walk(fn) {
			return false
		}
	}

	return true
}
