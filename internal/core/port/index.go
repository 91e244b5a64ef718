package port

import (
	"context"

	"github.com/bornholm/quill/internal/core/model"
)

type IndexSearchResult struct {
	ID    model.NodeID
	Score float64
}

type IndexSearchOptions struct {
	MaxResults int
}

type Index interface {
	Index(ctx context.Context, id model.NodeID, title string, content string) error
	Remove(ctx context.Context, ids ...model.NodeID) error
	Search(ctx context.Context, query string, opts IndexSearchOptions) ([]*IndexSearchResult, error)
}
