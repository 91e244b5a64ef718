package handle

import (
	"log/slog"
	"sync"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/editor/block"
	"github.com/pkg/errors"
	"github.com/rs/xid"
)

type ChangeFunc func()

// Handle is the live in-memory editable representation of one document.
// It owns an ordered list of top-level blocks and a set of change
// subscribers. A disposed handle never fires a subscriber again and is
// permanently retired.
type Handle struct {
	id model.NodeID

	mu          sync.RWMutex
	blocks      []*block.Block
	subscribers map[string]ChangeFunc
	disposed    bool
}

func newHandle(id model.NodeID) *Handle {
	return &Handle{
		id:          id,
		blocks:      make([]*block.Block, 0),
		subscribers: map[string]ChangeFunc{},
	}
}

func (h *Handle) ID() model.NodeID {
	return h.id
}

func (h *Handle) Blocks() []*block.Block {
	h.mu.RLock()
	defer h.mu.RUnlock()

	blocks := make([]*block.Block, len(h.blocks))
	copy(blocks, h.blocks)

	return blocks
}

// Reset replaces the document's blocks without notifying subscribers. It is
// the load path: populating a handle from storage is not an edit.
func (h *Handle) Reset(blocks []*block.Block) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return
	}

	h.blocks = blocks
}

// Update applies fn to the block list and notifies subscribers of the edit.
func (h *Handle) Update(fn func(blocks []*block.Block) []*block.Block) {
	h.mu.Lock()

	if h.disposed {
		h.mu.Unlock()
		return
	}

	h.blocks = fn(h.blocks)

	h.mu.Unlock()

	h.notify()
}

// Append adds blocks at the end of the document and notifies subscribers.
func (h *Handle) Append(blocks ...*block.Block) {
	h.Update(func(existing []*block.Block) []*block.Block {
		return append(existing, blocks...)
	})
}

// Touch notifies subscribers of an edit that already mutated the block list
// through Reset, e.g. a whole-document replacement coming from a surface.
func (h *Handle) Touch() {
	h.notify()
}

// Subscribe registers fn to be called after every edit. The returned
// function removes the subscription and is safe to call more than once.
func (h *Handle) Subscribe(fn ChangeFunc) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return func() {}
	}

	id := xid.New().String()
	h.subscribers[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.subscribers, id)
	}
}

func (h *Handle) notify() {
	h.mu.RLock()

	if h.disposed {
		h.mu.RUnlock()
		return
	}

	subscribers := make([]ChangeFunc, 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		subscribers = append(subscribers, fn)
	}

	h.mu.RUnlock()

	for _, fn := range subscribers {
		func() {
			defer func() {
				if recovered := recover(); recovered != nil {
					err, ok := recovered.(error)
					if !ok {
						err = errors.Errorf("%+v", recovered)
					}

					slog.Error("recovered panic in change subscriber", slogx.Error(errors.WithStack(err)), slog.String("documentID", string(h.id)))
				}
			}()

			fn()
		}()
	}
}

// Dispose releases every subscription before the handle is dropped.
// Idempotent.
func (h *Handle) Dispose() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return
	}

	h.disposed = true
	h.subscribers = map[string]ChangeFunc{}
	h.blocks = nil
}

func (h *Handle) Disposed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.disposed
}
