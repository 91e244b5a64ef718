package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/pkg/errors"
)

type GetFileResponse struct {
	ID      model.NodeID `json:"id"`
	Content string       `json:"content"`
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	nodeID := model.NodeID(r.PathValue("nodeID"))

	ctx := r.Context()

	content, err := h.nodeManager.GetContent(ctx, nodeID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not get node content", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	encodeResponse(w, r, GetFileResponse{ID: nodeID, Content: content})
}

type SaveFileRequest struct {
	Content string `json:"content"`
}

type SaveFileResponse struct {
	ID model.NodeID `json:"id"`
}

func (h *Handler) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	nodeID := model.NodeID(r.PathValue("nodeID"))

	ctx := r.Context()

	var req SaveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(ctx, "could not decode request body", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.nodeManager.SaveContent(ctx, nodeID, req.Content); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not save node content", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	encodeResponse(w, r, SaveFileResponse{ID: nodeID})
}
