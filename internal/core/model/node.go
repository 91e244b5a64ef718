package model

import (
	"time"

	"github.com/google/uuid"
)

type NodeID string

func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

type NodeType string

const (
	NodeTypeKnowledgeBase NodeType = "kb"
	NodeTypeFolder        NodeType = "folder"
	NodeTypeDocument      NodeType = "doc"
)

func (t NodeType) IsContainer() bool {
	return t == NodeTypeKnowledgeBase || t == NodeTypeFolder
}

type Node interface {
	ID() NodeID
	ParentID() NodeID
	Title() string
	Type() NodeType
	CreatedAt() time.Time
}

// TreeNode is a node with its resolved children, as returned to the UI layer.
type TreeNode struct {
	ID        NodeID     `json:"id"`
	ParentID  NodeID     `json:"parentId,omitempty"`
	Title     string     `json:"title"`
	Type      NodeType   `json:"type"`
	CreatedAt int64      `json:"createdAt"`
	Children  []TreeNode `json:"children,omitempty"`
}
