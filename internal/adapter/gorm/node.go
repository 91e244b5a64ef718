package gorm

import (
	"time"

	"github.com/bornholm/quill/internal/core/model"
)

type Node struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	ParentID  string `gorm:"index"`
	Title     string `gorm:"not null"`
	Type      string `gorm:"not null;index"`
	Content   string
}

type wrappedNode struct {
	n *Node
}

// ID implements model.Node.
func (w *wrappedNode) ID() model.NodeID {
	return model.NodeID(w.n.ID)
}

// ParentID implements model.Node.
func (w *wrappedNode) ParentID() model.NodeID {
	return model.NodeID(w.n.ParentID)
}

// Title implements model.Node.
func (w *wrappedNode) Title() string {
	return w.n.Title
}

// Type implements model.Node.
func (w *wrappedNode) Type() model.NodeType {
	return model.NodeType(w.n.Type)
}

// CreatedAt implements model.Node.
func (w *wrappedNode) CreatedAt() time.Time {
	return w.n.CreatedAt
}

var _ model.Node = &wrappedNode{}
