package service

import (
	"context"
	"log/slog"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/bornholm/quill/internal/metrics"
	"github.com/pkg/errors"
)

// NodeManager wraps the node store with tree assembly, recursive deletion
// and full-text search. It also implements the content contract the
// document lifecycle core saves through, keeping the index in sync with
// every persisted write.
type NodeManager struct {
	port.NodeStore

	index port.Index
}

func NewNodeManager(store port.NodeStore, index port.Index) *NodeManager {
	return &NodeManager{
		NodeStore: store,
		index:     index,
	}
}

// GetTree returns every node nested under its parent, root nodes first.
func (m *NodeManager) GetTree(ctx context.Context) ([]model.TreeNode, error) {
	nodes, err := m.ListNodes(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	children := map[model.NodeID][]model.Node{}
	for _, n := range nodes {
		children[n.ParentID()] = append(children[n.ParentID()], n)
	}

	var build func(n model.Node) model.TreeNode
	build = func(n model.Node) model.TreeNode {
		treeNode := model.TreeNode{
			ID:        n.ID(),
			ParentID:  n.ParentID(),
			Title:     n.Title(),
			Type:      n.Type(),
			CreatedAt: n.CreatedAt().UnixMilli(),
		}

		if n.Type().IsContainer() {
			treeNode.Children = make([]model.TreeNode, 0)
			for _, c := range children[n.ID()] {
				treeNode.Children = append(treeNode.Children, build(c))
			}
		}

		return treeNode
	}

	tree := make([]model.TreeNode, 0)
	for _, n := range children[""] {
		tree = append(tree, build(n))
	}

	return tree, nil
}

// DeleteNode removes the node and all of its descendants, and drops them
// from the index.
func (m *NodeManager) DeleteNode(ctx context.Context, id model.NodeID) error {
	nodes, err := m.ListNodes(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	children := map[model.NodeID][]model.Node{}
	for _, n := range nodes {
		children[n.ParentID()] = append(children[n.ParentID()], n)
	}

	toDelete := []model.NodeID{id}
	for i := 0; i < len(toDelete); i++ {
		for _, c := range children[toDelete[i]] {
			toDelete = append(toDelete, c.ID())
		}
	}

	if err := m.DeleteNodes(ctx, toDelete); err != nil {
		return errors.WithStack(err)
	}

	if err := m.index.Remove(ctx, toDelete...); err != nil {
		slog.WarnContext(ctx, "could not remove nodes from index", slogx.Error(errors.WithStack(err)))
	}

	return nil
}

// RenameNode updates the node's title.
func (m *NodeManager) RenameNode(ctx context.Context, id model.NodeID, title string) (model.Node, error) {
	node, err := m.UpdateNode(ctx, id, port.NodeUpdates{Title: &title})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return node, nil
}

// GetContent implements port.ContentStore.
func (m *NodeManager) GetContent(ctx context.Context, id model.NodeID) (string, error) {
	content, err := m.GetNodeContent(ctx, id)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return content, nil
}

// SaveContent implements port.ContentStore. The index follows the durable
// write; an indexing failure is logged but never fails the save.
func (m *NodeManager) SaveContent(ctx context.Context, id model.NodeID, content string) error {
	node, err := m.UpdateNode(ctx, id, port.NodeUpdates{Content: &content})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := m.index.Index(ctx, id, node.Title(), content); err != nil {
		slog.WarnContext(ctx, "could not index node content", slogx.Error(errors.WithStack(err)), slog.String("nodeID", string(id)))
	}

	return nil
}

// Search queries the full-text index first, then falls back to the store's
// substring matching for titles the index does not cover.
func (m *NodeManager) Search(ctx context.Context, query string, maxResults int) ([]model.Node, error) {
	metrics.TotalSearchRequests.Inc()

	seen := map[model.NodeID]struct{}{}
	nodes := make([]model.Node, 0)

	results, err := m.index.Search(ctx, query, port.IndexSearchOptions{MaxResults: maxResults})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, r := range results {
		node, err := m.GetNodeByID(ctx, r.ID)
		if err != nil {
			if errors.Is(err, port.ErrNotFound) {
				// The index may lag behind deletions.
				continue
			}

			return nil, errors.WithStack(err)
		}

		seen[node.ID()] = struct{}{}
		nodes = append(nodes, node)
	}

	matched, err := m.SearchNodes(ctx, query)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, node := range matched {
		if _, exists := seen[node.ID()]; exists {
			continue
		}

		if maxResults > 0 && len(nodes) >= maxResults {
			break
		}

		seen[node.ID()] = struct{}{}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

var _ port.ContentStore = &NodeManager{}
