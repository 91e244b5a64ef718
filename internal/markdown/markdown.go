package markdown

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmParser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

func New() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.Meta,
		),
	)
}

type Metadata struct {
	Title string
}

// ExtractText parses data as markdown and returns its plain text with the
// formatting stripped, suitable for full-text indexing, along with any
// frontmatter metadata.
func ExtractText(data []byte) (string, Metadata, error) {
	md := New()

	context := gmParser.NewContext()

	root := md.Parser().Parse(
		text.NewReader(data),
		gmParser.WithContext(context),
	)

	var sb strings.Builder

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if n.Type() == ast.TypeBlock && !entering && sb.Len() > 0 {
			sb.WriteByte('\n')
			return ast.WalkContinue, nil
		}

		if !entering {
			return ast.WalkContinue, nil
		}

		switch el := n.(type) {
		case *ast.Text:
			sb.Write(el.Segment.Value(data))

			if el.SoftLineBreak() || el.HardLineBreak() {
				sb.WriteByte('\n')
			}

		case *ast.FencedCodeBlock:
			lines := el.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				sb.Write(line.Value(data))
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", Metadata{}, errors.WithStack(err)
	}

	metadata := Metadata{}

	if rawTitle, exists := meta.Get(context)["title"]; exists {
		if title, ok := rawTitle.(string); ok {
			metadata.Title = title
		}
	}

	return strings.TrimSpace(sb.String()), metadata, nil
}
