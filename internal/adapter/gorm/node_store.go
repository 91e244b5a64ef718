package gorm

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type NodeStore struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
}

// GetNodeByID implements port.NodeStore.
func (s *NodeStore) GetNodeByID(ctx context.Context, id model.NodeID) (model.Node, error) {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var node Node

	if err := db.First(&node, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(port.ErrNotFound)
		}

		return nil, errors.WithStack(err)
	}

	return &wrappedNode{&node}, nil
}

// ListNodes implements port.NodeStore.
func (s *NodeStore) ListNodes(ctx context.Context) ([]model.Node, error) {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var nodes []Node

	if err := db.Order("created_at asc").Find(&nodes).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	wrapped := make([]model.Node, 0, len(nodes))
	for i := range nodes {
		wrapped = append(wrapped, &wrappedNode{&nodes[i]})
	}

	return wrapped, nil
}

// CreateNode implements port.NodeStore.
func (s *NodeStore) CreateNode(ctx context.Context, parentID model.NodeID, nodeType model.NodeType, title string) (model.Node, error) {
	node := &Node{
		ID:       string(model.NewNodeID()),
		ParentID: string(parentID),
		Title:    title,
		Type:     string(nodeType),
	}

	err := s.withRetry(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if parentID != "" {
			var parent Node
			if err := tx.First(&parent, "id = ?", string(parentID)).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.WithStack(port.ErrNotFound)
				}

				return errors.WithStack(err)
			}

			if !model.NodeType(parent.Type).IsContainer() {
				return errors.Errorf("node '%s' of type '%s' can not have children", parent.ID, parent.Type)
			}
		}

		if err := tx.Create(node).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedNode{node}, nil
}

// UpdateNode implements port.NodeStore.
func (s *NodeStore) UpdateNode(ctx context.Context, id model.NodeID, updates port.NodeUpdates) (model.Node, error) {
	var node Node

	err := s.withRetry(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.First(&node, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		columns := map[string]any{}

		if updates.Title != nil {
			columns["title"] = *updates.Title
		}

		if updates.Content != nil {
			columns["content"] = *updates.Content
		}

		if len(columns) == 0 {
			return nil
		}

		if err := tx.Model(&node).Updates(columns).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedNode{&node}, nil
}

// DeleteNodes implements port.NodeStore.
func (s *NodeStore) DeleteNodes(ctx context.Context, ids []model.NodeID) error {
	if len(ids) == 0 {
		return nil
	}

	rawIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		rawIDs = append(rawIDs, string(id))
	}

	err := s.withRetry(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Delete(&Node{}, "id in ?", rawIDs).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// GetNodeContent implements port.NodeStore.
func (s *NodeStore) GetNodeContent(ctx context.Context, id model.NodeID) (string, error) {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}

	var node Node

	if err := db.Select("id", "content").First(&node, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.WithStack(port.ErrNotFound)
		}

		return "", errors.WithStack(err)
	}

	return node.Content, nil
}

// SearchNodes implements port.NodeStore.
func (s *NodeStore) SearchNodes(ctx context.Context, query string) ([]model.Node, error) {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var nodes []Node

	pattern := "%" + query + "%"

	if err := db.Where("title like ? or content like ?", pattern, pattern).Find(&nodes).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	wrapped := make([]model.Node, 0, len(nodes))
	for i := range nodes {
		wrapped = append(wrapped, &wrappedNode{&nodes[i]})
	}

	return wrapped, nil
}

func (s *NodeStore) withRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := 500 * time.Millisecond
	maxRetries := 10
	retries := 0

	for {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := fn(ctx, tx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		})
		if err != nil {
			if retries >= maxRetries {
				return errors.WithStack(err)
			}

			var sqliteErr *sqlite3.Error
			if errors.As(err, &sqliteErr) {
				if !slices.Contains(codes, sqliteErr.Code()) {
					return errors.WithStack(err)
				}

				slog.DebugContext(ctx, "transaction failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

				retries++
				time.Sleep(backoff)
				backoff *= 2
				continue
			}

			return errors.WithStack(err)
		}

		return nil
	}
}

func NewNodeStore(db *gorm.DB) *NodeStore {
	return &NodeStore{
		getDatabase: createGetDatabase(db),
	}
}

func createGetDatabase(db *gorm.DB) func(ctx context.Context) (*gorm.DB, error) {
	var (
		migrateOnce sync.Once
		migrateErr  error
	)

	return func(ctx context.Context) (*gorm.DB, error) {
		migrateOnce.Do(func() {
			if err := db.AutoMigrate(&Node{}); err != nil {
				migrateErr = errors.WithStack(err)
				return
			}
		})
		if migrateErr != nil {
			return nil, errors.WithStack(migrateErr)
		}

		return db, nil
	}
}

var _ port.NodeStore = &NodeStore{}
