package bleve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/pkg/errors"
)

func TestIndex(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "index.bleve")

	if err := os.RemoveAll(dataDir); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	bleveIndex, err := bleve.New(dataDir, IndexMapping())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	defer bleveIndex.Close()

	index := NewIndex(bleveIndex)

	ctx := context.Background()

	first := model.NewNodeID()
	second := model.NewNodeID()

	if err := index.Index(ctx, first, "Getting started", "# Welcome\n\nThis note explains the basics of the knowledge base."); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if err := index.Index(ctx, second, "Roadmap", "Planned work:\n\n- search improvements\n- offline mode"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	results, err := index.Search(ctx, "basics", port.IndexSearchOptions{MaxResults: 10})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(results); e != g {
		t.Fatalf("len(results): expected '%d', got '%d'", e, g)
	}

	if e, g := first, results[0].ID; e != g {
		t.Errorf("results[0].ID: expected '%s', got '%s'", e, g)
	}

	if err := index.Remove(ctx, first); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	results, err = index.Search(ctx, "basics", port.IndexSearchOptions{MaxResults: 10})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 0, len(results); e != g {
		t.Errorf("len(results) after removal: expected '%d', got '%d'", e, g)
	}
}
