package handle

import (
	"testing"

	"github.com/bornholm/quill/internal/editor/block"
)

func TestHandleNotify(t *testing.T) {
	h := newHandle("doc-1")

	notified := 0
	unsubscribe := h.Subscribe(func() {
		notified++
	})

	h.Append(block.New(block.KindParagraph, "first"))

	if e, g := 1, notified; e != g {
		t.Errorf("expected %d notifications, got %d", e, g)
	}

	// Reset is the load path, not an edit.
	h.Reset([]*block.Block{block.New(block.KindParagraph, "loaded")})

	if e, g := 1, notified; e != g {
		t.Errorf("expected %d notifications, got %d", e, g)
	}

	h.Touch()

	if e, g := 2, notified; e != g {
		t.Errorf("expected %d notifications, got %d", e, g)
	}

	unsubscribe()

	h.Append(block.New(block.KindParagraph, "second"))

	if e, g := 2, notified; e != g {
		t.Errorf("expected %d notifications, got %d", e, g)
	}
}

func TestHandleSubscriberPanicIsolation(t *testing.T) {
	h := newHandle("doc-1")

	h.Subscribe(func() {
		panic("boom")
	})

	notified := false
	h.Subscribe(func() {
		notified = true
	})

	h.Append(block.New(block.KindParagraph, "text"))

	if e, g := true, notified; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}

func TestHandleDispose(t *testing.T) {
	h := newHandle("doc-1")

	notified := 0
	h.Subscribe(func() {
		notified++
	})

	h.Dispose()
	h.Dispose()

	if e, g := true, h.Disposed(); e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	h.Append(block.New(block.KindParagraph, "after"))
	h.Touch()

	if e, g := 0, notified; e != g {
		t.Errorf("expected %d notifications, got %d", e, g)
	}

	if e, g := 0, len(h.Blocks()); e != g {
		t.Errorf("expected %d blocks, got %d", e, g)
	}
}
