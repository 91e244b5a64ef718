package api

import (
	"log/slog"
	"net/http"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/pkg/errors"
)

type GetTreeResponse struct {
	Nodes []model.TreeNode `json:"nodes"`
}

func (h *Handler) handleGetTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	nodes, err := h.nodeManager.GetTree(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "could not retrieve node tree", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	encodeResponse(w, r, GetTreeResponse{Nodes: nodes})
}
