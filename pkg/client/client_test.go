package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bornholm/quill/internal/adapter/memory"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/bornholm/quill/internal/core/service"
	"github.com/bornholm/quill/internal/http/handler/api"
	"github.com/pkg/errors"
)

type indexStub struct {
	entries map[model.NodeID]string
}

// Index implements port.Index.
func (s *indexStub) Index(ctx context.Context, id model.NodeID, title string, content string) error {
	if s.entries == nil {
		s.entries = map[model.NodeID]string{}
	}

	s.entries[id] = title + "\n" + content

	return nil
}

// Remove implements port.Index.
func (s *indexStub) Remove(ctx context.Context, ids ...model.NodeID) error {
	for _, id := range ids {
		delete(s.entries, id)
	}

	return nil
}

// Search implements port.Index.
func (s *indexStub) Search(ctx context.Context, query string, opts port.IndexSearchOptions) ([]*port.IndexSearchResult, error) {
	results := make([]*port.IndexSearchResult, 0)
	for id, text := range s.entries {
		if strings.Contains(strings.ToLower(text), strings.ToLower(query)) {
			results = append(results, &port.IndexSearchResult{ID: id, Score: 1})
		}
	}

	return results, nil
}

var _ port.Index = &indexStub{}

func newAPIHandler() http.Handler {
	handler := api.NewHandler(service.NewNodeManager(memory.NewNodeStore(), &indexStub{}))

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", handler))

	return mux
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	baseURL, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return New(
		WithBaseURL(baseURL),
		WithHTTPClient(&http.Client{
			Timeout: 10 * time.Second,
			Transport: &RateLimitTransport{
				MaxRetries:  3,
				DefaultWait: time.Millisecond,
			},
		}),
	)
}

func TestClientNodeLifecycle(t *testing.T) {
	server := httptest.NewServer(newAPIHandler())
	defer server.Close()

	client := newTestClient(t, server)

	ctx := context.Background()

	kb, err := client.CreateNode(ctx, "", model.NodeTypeKnowledgeBase, "My Base")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	doc, err := client.CreateNode(ctx, kb.ID, model.NodeTypeDocument, "First note")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := kb.ID, doc.ParentID; e != g {
		t.Errorf("doc.ParentID: expected '%v', got '%v'", e, g)
	}

	tree, err := client.GetTree(ctx)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(tree); e != g {
		t.Fatalf("expected %d root nodes, got %d", e, g)
	}

	if e, g := 1, len(tree[0].Children); e != g {
		t.Fatalf("expected %d children, got %d", e, g)
	}

	if err := client.SaveFile(ctx, doc.ID, "# Hello world"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	content, err := client.GetFile(ctx, doc.ID)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "# Hello world", content; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	results, err := client.Search(ctx, "hello", 10)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(results); e != g {
		t.Fatalf("expected %d results, got %d", e, g)
	}

	renamed, err := client.RenameNode(ctx, doc.ID, "Renamed note")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "Renamed note", renamed.Title; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	if err := client.DeleteNode(ctx, kb.ID); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if _, err := client.GetFile(ctx, doc.ID); err == nil {
		t.Error("expected an error after deletion")
	}
}

func TestClientRetriesRateLimited(t *testing.T) {
	handler := newAPIHandler()

	var rejected atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rejected.Swap(true) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		handler.ServeHTTP(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	tree, err := client.GetTree(context.Background())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := true, rejected.Load(); e != g {
		t.Errorf("expected the first request to be rejected")
	}

	if e, g := 0, len(tree); e != g {
		t.Errorf("expected %d root nodes, got %d", e, g)
	}
}

func TestClientServerUnreachable(t *testing.T) {
	server := httptest.NewServer(newAPIHandler())

	client := newTestClient(t, server)

	server.Close()

	_, err := client.GetTree(context.Background())
	if !errors.Is(err, port.ErrUnreachable) {
		t.Errorf("expected port.ErrUnreachable, got %+v", err)
	}
}
