package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/pkg/errors"
)

type CreateNodeRequest struct {
	ParentID model.NodeID   `json:"parentId"`
	Type     model.NodeType `json:"type"`
	Title    string         `json:"title"`
}

type NodeResponse struct {
	ID        model.NodeID   `json:"id"`
	ParentID  model.NodeID   `json:"parentId,omitempty"`
	Title     string         `json:"title"`
	Type      model.NodeType `json:"type"`
	CreatedAt int64          `json:"createdAt"`
}

func toNodeResponse(node model.Node) NodeResponse {
	return NodeResponse{
		ID:        node.ID(),
		ParentID:  node.ParentID(),
		Title:     node.Title(),
		Type:      node.Type(),
		CreatedAt: node.CreatedAt().UnixMilli(),
	}
}

func (h *Handler) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(ctx, "could not decode request body", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	switch req.Type {
	case model.NodeTypeKnowledgeBase, model.NodeTypeFolder, model.NodeTypeDocument:
	default:
		slog.ErrorContext(ctx, "invalid node type", slog.Any("type", req.Type))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	node, err := h.nodeManager.CreateNode(ctx, req.ParentID, req.Type, req.Title)
	if err != nil {
		slog.ErrorContext(ctx, "could not create node", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	encodeResponse(w, r, toNodeResponse(node))
}

type DeleteNodeResponse struct {
	ID model.NodeID `json:"id"`
}

func (h *Handler) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := model.NodeID(r.PathValue("nodeID"))

	ctx := r.Context()

	if err := h.nodeManager.DeleteNode(ctx, nodeID); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not delete node", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	encodeResponse(w, r, DeleteNodeResponse{ID: nodeID})
}

type RenameNodeRequest struct {
	Title string `json:"title"`
}

func (h *Handler) handleRenameNode(w http.ResponseWriter, r *http.Request) {
	nodeID := model.NodeID(r.PathValue("nodeID"))

	ctx := r.Context()

	var req RenameNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(ctx, "could not decode request body", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	node, err := h.nodeManager.RenameNode(ctx, nodeID, req.Title)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not rename node", slog.Any("error", errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	encodeResponse(w, r, toNodeResponse(node))
}
