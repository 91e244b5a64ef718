package handle

import (
	"github.com/bornholm/quill/internal/core/model"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry owns the pool of live handles, one per document identifier.
type Registry struct {
	handles *xsync.MapOf[model.NodeID, *Handle]
}

func NewRegistry() *Registry {
	return &Registry{
		handles: xsync.NewMapOf[model.NodeID, *Handle](),
	}
}

// GetOrCreate returns the live handle for id, creating it if none exists.
// Repeated calls with the same id return the identical instance until it is
// disposed; after disposal a new call yields a fresh handle, never the
// retired one.
func (r *Registry) GetOrCreate(id model.NodeID) *Handle {
	h, _ := r.handles.LoadOrCompute(id, func() *Handle {
		return newHandle(id)
	})

	return h
}

// Dispose removes and invalidates the handle for id. Calling it for an
// unknown id is a no-op.
func (r *Registry) Dispose(id model.NodeID) {
	h, exists := r.handles.LoadAndDelete(id)
	if !exists {
		return
	}

	h.Dispose()
}

func (r *Registry) ActiveCount() int {
	return r.handles.Size()
}
