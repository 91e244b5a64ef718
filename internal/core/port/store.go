package port

import (
	"context"

	"github.com/bornholm/quill/internal/core/model"
)

type NodeUpdates struct {
	Title   *string
	Content *string
}

type NodeStore interface {
	GetNodeByID(ctx context.Context, id model.NodeID) (model.Node, error)
	ListNodes(ctx context.Context) ([]model.Node, error)
	CreateNode(ctx context.Context, parentID model.NodeID, nodeType model.NodeType, title string) (model.Node, error)
	UpdateNode(ctx context.Context, id model.NodeID, updates NodeUpdates) (model.Node, error)
	// DeleteNodes removes the given nodes in one batch. Unknown ids are
	// ignored.
	DeleteNodes(ctx context.Context, ids []model.NodeID) error
	GetNodeContent(ctx context.Context, id model.NodeID) (string, error)
	SearchNodes(ctx context.Context, query string) ([]model.Node, error)
}

// ContentStore is the narrow persistence contract the document lifecycle
// core depends on: atomic per-identifier reads and writes, nothing else.
type ContentStore interface {
	GetContent(ctx context.Context, id model.NodeID) (string, error)
	SaveContent(ctx context.Context, id model.NodeID, content string) error
}
