package api

import (
	"net/http"

	"github.com/bornholm/quill/internal/core/service"
)

type Handler struct {
	nodeManager *service.NodeManager
	mux         *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(nodeManager *service.NodeManager) *Handler {
	h := &Handler{
		nodeManager: nodeManager,
		mux:         &http.ServeMux{},
	}

	h.mux.Handle("GET /kb", http.HandlerFunc(h.handleGetTree))
	h.mux.Handle("GET /search", http.HandlerFunc(h.handleSearch))

	h.mux.Handle("GET /files/{nodeID}", http.HandlerFunc(h.handleGetFile))
	h.mux.Handle("POST /files/{nodeID}", http.HandlerFunc(h.handleSaveFile))

	h.mux.Handle("POST /create", http.HandlerFunc(h.handleCreateNode))
	h.mux.Handle("POST /delete/{nodeID}", http.HandlerFunc(h.handleDeleteNode))
	h.mux.Handle("POST /rename/{nodeID}", http.HandlerFunc(h.handleRenameNode))

	return h
}

var _ http.Handler = &Handler{}
