package bleve

import (
	"context"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/bornholm/quill/internal/markdown"
	"github.com/pkg/errors"
)

type Index struct {
	index bleve.Index
}

// Index implements port.Index.
func (i *Index) Index(ctx context.Context, id model.NodeID, title string, content string) error {
	// Index the plain text, not the raw markup, so that queries do not match
	// formatting characters.
	text, metadata, err := markdown.ExtractText([]byte(content))
	if err != nil {
		return errors.WithStack(err)
	}

	if metadata.Title != "" {
		title = metadata.Title
	}

	data := map[string]any{
		"_type":   "node",
		"title":   title,
		"content": text,
	}

	if err := i.index.Index(string(id), data); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Remove implements port.Index.
func (i *Index) Remove(ctx context.Context, ids ...model.NodeID) error {
	batch := i.index.NewBatch()

	for _, id := range ids {
		batch.Delete(string(id))
	}

	if err := i.index.Batch(batch); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Search implements port.Index.
func (i *Index) Search(ctx context.Context, query string, opts port.IndexSearchOptions) ([]*port.IndexSearchResult, error) {
	queries := []bleveQuery.Query{
		bleve.NewMatchQuery(query),
		bleve.NewPrefixQuery(query),
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))

	req.From = 0

	if opts.MaxResults > 0 {
		req.Size = opts.MaxResults
	}

	result, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	searchResults := make([]*port.IndexSearchResult, 0, len(result.Hits))

	for _, r := range result.Hits {
		searchResults = append(searchResults, &port.IndexSearchResult{
			ID:    model.NodeID(r.ID),
			Score: r.Score,
		})
	}

	return searchResults, nil
}

func NewIndex(index bleve.Index) *Index {
	return &Index{
		index: index,
	}
}

var _ port.Index = &Index{}
