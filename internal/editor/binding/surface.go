package binding

import (
	"context"

	"github.com/bornholm/quill/internal/editor/handle"
)

// Surface is the narrow interface the binding drives the underlying
// editable surface through. The surface's rendering internals are opaque.
type Surface interface {
	Initialize(ctx context.Context, h *handle.Handle) error
	Dispose() error
}

type SurfaceFactory func() Surface

// TextSurface is the degraded plain-text surface used when the rich surface
// cannot initialize. It cannot fail: it only holds on to the handle and lets
// the binding route edits and explicit saves through it.
type TextSurface struct {
	handle *handle.Handle
}

// Initialize implements [Surface].
func (s *TextSurface) Initialize(ctx context.Context, h *handle.Handle) error {
	s.handle = h
	return nil
}

// Dispose implements [Surface].
func (s *TextSurface) Dispose() error {
	s.handle = nil
	return nil
}

func NewTextSurface() *TextSurface {
	return &TextSurface{}
}

var _ Surface = &TextSurface{}
