package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

type node struct {
	id        model.NodeID
	parentID  model.NodeID
	title     string
	nodeType  model.NodeType
	content   string
	createdAt time.Time
}

// ID implements model.Node.
func (n *node) ID() model.NodeID {
	return n.id
}

// ParentID implements model.Node.
func (n *node) ParentID() model.NodeID {
	return n.parentID
}

// Title implements model.Node.
func (n *node) Title() string {
	return n.title
}

// Type implements model.Node.
func (n *node) Type() model.NodeType {
	return n.nodeType
}

// CreatedAt implements model.Node.
func (n *node) CreatedAt() time.Time {
	return n.createdAt
}

var _ model.Node = &node{}

// NodeStore is an in-memory node store used by tests and ephemeral runs.
type NodeStore struct {
	nodes *xsync.MapOf[model.NodeID, *node]
}

func NewNodeStore() *NodeStore {
	return &NodeStore{
		nodes: xsync.NewMapOf[model.NodeID, *node](),
	}
}

// GetNodeByID implements port.NodeStore.
func (s *NodeStore) GetNodeByID(ctx context.Context, id model.NodeID) (model.Node, error) {
	n, exists := s.nodes.Load(id)
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return n, nil
}

// ListNodes implements port.NodeStore.
func (s *NodeStore) ListNodes(ctx context.Context) ([]model.Node, error) {
	nodes := make([]model.Node, 0)

	s.nodes.Range(func(_ model.NodeID, n *node) bool {
		nodes = append(nodes, n)
		return true
	})

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].CreatedAt().Before(nodes[j].CreatedAt())
	})

	return nodes, nil
}

// CreateNode implements port.NodeStore.
func (s *NodeStore) CreateNode(ctx context.Context, parentID model.NodeID, nodeType model.NodeType, title string) (model.Node, error) {
	if parentID != "" {
		parent, exists := s.nodes.Load(parentID)
		if !exists {
			return nil, errors.WithStack(port.ErrNotFound)
		}

		if !parent.nodeType.IsContainer() {
			return nil, errors.Errorf("node '%s' of type '%s' can not have children", parent.id, parent.nodeType)
		}
	}

	n := &node{
		id:        model.NewNodeID(),
		parentID:  parentID,
		title:     title,
		nodeType:  nodeType,
		createdAt: time.Now(),
	}

	s.nodes.Store(n.id, n)

	return n, nil
}

// UpdateNode implements port.NodeStore.
func (s *NodeStore) UpdateNode(ctx context.Context, id model.NodeID, updates port.NodeUpdates) (model.Node, error) {
	n, exists := s.nodes.Load(id)
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	updated := *n

	if updates.Title != nil {
		updated.title = *updates.Title
	}

	if updates.Content != nil {
		updated.content = *updates.Content
	}

	s.nodes.Store(id, &updated)

	return &updated, nil
}

// DeleteNodes implements port.NodeStore.
func (s *NodeStore) DeleteNodes(ctx context.Context, ids []model.NodeID) error {
	for _, id := range ids {
		s.nodes.Delete(id)
	}

	return nil
}

// GetNodeContent implements port.NodeStore.
func (s *NodeStore) GetNodeContent(ctx context.Context, id model.NodeID) (string, error) {
	n, exists := s.nodes.Load(id)
	if !exists {
		return "", errors.WithStack(port.ErrNotFound)
	}

	return n.content, nil
}

// SearchNodes implements port.NodeStore.
func (s *NodeStore) SearchNodes(ctx context.Context, query string) ([]model.Node, error) {
	query = strings.ToLower(query)

	nodes := make([]model.Node, 0)

	s.nodes.Range(func(_ model.NodeID, n *node) bool {
		if strings.Contains(strings.ToLower(n.title), query) || strings.Contains(strings.ToLower(n.content), query) {
			nodes = append(nodes, n)
		}

		return true
	})

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].CreatedAt().Before(nodes[j].CreatedAt())
	})

	return nodes, nil
}

var _ port.NodeStore = &NodeStore{}
