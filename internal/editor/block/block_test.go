package block

import (
	"testing"
)

func TestWalkDepthFirst(t *testing.T) {
	root := NewHeading(1, "root")

	child := New(KindParagraph, "child")
	child.Append(New(KindParagraph, "grandchild"))

	root.Append(child, New(KindParagraph, "sibling"))

	visited := make([]string, 0)
	root.Walk(func(b *Block) bool {
		visited = append(visited, b.Text)
		return true
	})

	expected := []string{"root", "child", "grandchild", "sibling"}

	if e, g := len(expected), len(visited); e != g {
		t.Fatalf("expected %d visited blocks, got %d", e, g)
	}

	for i := range expected {
		if e, g := expected[i], visited[i]; e != g {
			t.Errorf("visited[%d]: expected '%v', got '%v'", i, e, g)
		}
	}
}

func TestWalkStops(t *testing.T) {
	root := New(KindParagraph, "root")
	root.Append(New(KindParagraph, "first"), New(KindParagraph, "second"))

	visited := 0
	root.Walk(func(b *Block) bool {
		visited++
		return b.Text != "first"
	})

	if e, g := 2, visited; e != g {
		t.Errorf("expected %d visited blocks, got %d", e, g)
	}
}

func TestWalkNil(t *testing.T) {
	var b *Block

	if e, g := true, b.Walk(func(b *Block) bool { return true }); e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}
