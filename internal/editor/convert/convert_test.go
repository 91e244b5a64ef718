package convert

import (
	"strings"
	"testing"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/editor/block"
	"github.com/bornholm/quill/internal/editor/handle"
	"github.com/davecgh/go-spew/spew"
)

func newTestHandle(t *testing.T, id model.NodeID) *handle.Handle {
	t.Helper()
	return handle.NewRegistry().GetOrCreate(id)
}

func TestTextToDocument(t *testing.T) {
	text := strings.Join([]string{
		"# Title",
		"",
		"Some paragraph.",
		"",
		"- first",
		"  - nested",
		"1. numbered",
		"> quoted",
		"---",
		"```go",
		"func main() {}",
		"```",
	}, "\n")

	h := newTestHandle(t, "doc-1")

	TextToDocument(text, h)

	blocks := h.Blocks()

	expectedKinds := []block.Kind{
		block.KindHeading,
		block.KindParagraph,
		block.KindBulletItem,
		block.KindBulletItem,
		block.KindNumberedItem,
		block.KindQuote,
		block.KindDivider,
		block.KindCode,
	}

	if e, g := len(expectedKinds), len(blocks); e != g {
		t.Fatalf("expected %d blocks, got %d: %s", e, g, spew.Sdump(blocks))
	}

	for i, kind := range expectedKinds {
		if e, g := kind, blocks[i].Kind; e != g {
			t.Errorf("blocks[%d].Kind: expected '%v', got '%v'", i, e, g)
		}
	}

	if e, g := 1, blocks[0].Level; e != g {
		t.Errorf("heading level: expected '%v', got '%v'", e, g)
	}

	if e, g := 1, blocks[3].Level; e != g {
		t.Errorf("nested bullet level: expected '%v', got '%v'", e, g)
	}

	if e, g := "go", blocks[7].Language; e != g {
		t.Errorf("code language: expected '%v', got '%v'", e, g)
	}

	if e, g := "func main() {}", blocks[7].Text; e != g {
		t.Errorf("code text: expected '%v', got '%v'", e, g)
	}
}

func TestTextToDocumentEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		h := newTestHandle(t, "doc-empty")

		TextToDocument(text, h)

		if e, g := 0, len(h.Blocks()); e != g {
			t.Errorf("text %q: expected %d blocks, got %d", text, e, g)
		}
	}
}

func TestTextToDocumentUnterminatedFence(t *testing.T) {
	h := newTestHandle(t, "doc-fence")

	TextToDocument("```python\nprint('hi')", h)

	blocks := h.Blocks()

	if e, g := 1, len(blocks); e != g {
		t.Fatalf("expected %d blocks, got %d", e, g)
	}

	if e, g := block.KindCode, blocks[0].Kind; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	if e, g := "print('hi')", blocks[0].Text; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}

func TestTextToDocumentMalformedLine(t *testing.T) {
	// An invalid byte sequence degrades that line only.
	text := "before\n\xff\xfe\nafter"

	h := newTestHandle(t, "doc-malformed")

	TextToDocument(text, h)

	blocks := h.Blocks()

	if e, g := 2, len(blocks); e != g {
		t.Fatalf("expected %d blocks, got %d: %s", e, g, spew.Sdump(blocks))
	}

	if e, g := "before", blocks[0].Text; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	if e, g := "after", blocks[1].Text; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}

func TestDocumentToText(t *testing.T) {
	h := newTestHandle(t, "doc-render")

	h.Reset([]*block.Block{
		block.NewHeading(2, "Section"),
		block.New(block.KindParagraph, "Body text."),
		block.New(block.KindParagraph, ""),
		block.New(block.KindQuote, "wise words"),
		block.New(block.KindDivider, ""),
	})

	text := DocumentToText(h)

	expected := strings.Join([]string{
		"## Section",
		"Body text.",
		"> wise words",
		"---",
	}, "\n")

	if e, g := expected, text; e != g {
		t.Errorf("expected %q, got %q", e, g)
	}
}

func TestDocumentToTextNestedChildren(t *testing.T) {
	h := newTestHandle(t, "doc-nested")

	parent := block.New(block.KindBulletItem, "parent")
	child := block.New(block.KindBulletItem, "child")
	child.Level = 1
	parent.Append(child)

	h.Reset([]*block.Block{parent})

	text := DocumentToText(h)

	expected := "- parent\n  - child"

	if e, g := expected, text; e != g {
		t.Errorf("expected %q, got %q", e, g)
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"# Notes\n\nA paragraph.\n\n- one\n- two",
		"```sh\nls -la\n```",
		"> quote\n\n---\n\nend",
	}

	for _, text := range texts {
		h := newTestHandle(t, "doc-roundtrip")

		TextToDocument(text, h)

		rendered := DocumentToText(h)

		h2 := newTestHandle(t, "doc-roundtrip-2")

		TextToDocument(rendered, h2)

		if e, g := DocumentToText(h2), rendered; e != g {
			t.Errorf("text %q: expected stable render %q, got %q", text, e, g)
		}
	}
}
