package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/bornholm/quill/internal/editor/block"
	"github.com/bornholm/quill/internal/editor/handle"
	"github.com/pkg/errors"
)

type contentStoreStub struct {
	mu       sync.Mutex
	contents map[model.NodeID]string
	saves    []string
	attempts []time.Time
	failures int
}

// GetContent implements port.ContentStore.
func (s *contentStoreStub) GetContent(ctx context.Context, id model.NodeID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, exists := s.contents[id]
	if !exists {
		return "", errors.WithStack(port.ErrNotFound)
	}

	return content, nil
}

// SaveContent implements port.ContentStore.
func (s *contentStoreStub) SaveContent(ctx context.Context, id model.NodeID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts = append(s.attempts, time.Now())

	if s.failures > 0 {
		s.failures--
		return errors.New("storage unreachable")
	}

	if s.contents == nil {
		s.contents = map[model.NodeID]string{}
	}

	s.contents[id] = content
	s.saves = append(s.saves, content)

	return nil
}

func (s *contentStoreStub) savedContents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	saves := make([]string, len(s.saves))
	copy(saves, s.saves)

	return saves
}

func (s *contentStoreStub) attemptTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := make([]time.Time, len(s.attempts))
	copy(attempts, s.attempts)

	return attempts
}

var _ port.ContentStore = &contentStoreStub{}

type backupStoreStub struct {
	mu      sync.Mutex
	pending map[model.NodeID]model.PendingChange
}

// SavePending implements port.BackupStore.
func (s *backupStoreStub) SavePending(ctx context.Context, change model.PendingChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		s.pending = map[model.NodeID]model.PendingChange{}
	}

	s.pending[change.Identifier] = change

	return nil
}

// GetPending implements port.BackupStore.
func (s *backupStoreStub) GetPending(ctx context.Context, id model.NodeID) (*model.PendingChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, exists := s.pending[id]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return &change, nil
}

// ClearPending implements port.BackupStore.
func (s *backupStoreStub) ClearPending(ctx context.Context, id model.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)

	return nil
}

var _ port.BackupStore = &backupStoreStub{}

func newTestManager(contents *contentStoreStub, backups *backupStoreStub, funcs ...OptionFunc) *Manager {
	opts := append([]OptionFunc{
		WithDebounceInterval(20 * time.Millisecond),
		WithSaveBaseBackoff(time.Millisecond),
	}, funcs...)

	return NewManager(handle.NewRegistry(), contents, backups, opts...)
}

func TestLoadDocument(t *testing.T) {
	contents := &contentStoreStub{contents: map[model.NodeID]string{
		"doc-1": "# Hello",
	}}

	manager := newTestManager(contents, &backupStoreStub{})

	ctx := context.Background()

	if err := manager.LoadDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	state, stateErr := manager.State()
	if e, g := StateSaved, state; e != g {
		t.Errorf("expected state '%v', got '%v'", e, g)
	}
	if stateErr != nil {
		t.Errorf("expected no state error, got %+v", stateErr)
	}

	id, active := manager.ActiveDocument()
	if e, g := true, active; e != g {
		t.Fatalf("expected '%v', got '%v'", e, g)
	}
	if e, g := model.NodeID("doc-1"), id; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	h, exists := manager.ActiveHandle()
	if e, g := true, exists; e != g {
		t.Fatalf("expected '%v', got '%v'", e, g)
	}
	if e, g := 1, len(h.Blocks()); e != g {
		t.Errorf("expected %d blocks, got %d", e, g)
	}
}

func TestLoadDocumentFailure(t *testing.T) {
	manager := newTestManager(&contentStoreStub{}, &backupStoreStub{})

	err := manager.LoadDocument(context.Background(), "doc-missing")
	if err == nil {
		t.Fatal("expected an error")
	}

	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected port.ErrNotFound, got %+v", err)
	}

	state, stateErr := manager.State()
	if e, g := StateError, state; e != g {
		t.Errorf("expected state '%v', got '%v'", e, g)
	}
	if stateErr == nil {
		t.Error("expected a state error")
	}
}

func TestDebouncedSave(t *testing.T) {
	contents := &contentStoreStub{contents: map[model.NodeID]string{
		"doc-1": "",
	}}

	manager := newTestManager(contents, &backupStoreStub{})

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	h, _ := manager.ActiveHandle()

	// Rapid successive edits collapse into a single save of the last state.
	h.Append(block.New(block.KindParagraph, "first"))
	h.Append(block.New(block.KindParagraph, "second"))

	time.Sleep(150 * time.Millisecond)

	saves := contents.savedContents()

	if e, g := 1, len(saves); e != g {
		t.Fatalf("expected %d saves, got %d: %v", e, g, saves)
	}

	if e, g := "first\nsecond", saves[0]; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}

func TestSaveRetries(t *testing.T) {
	baseBackoff := 30 * time.Millisecond

	contents := &contentStoreStub{
		contents: map[model.NodeID]string{"doc-1": ""},
		failures: 2,
	}

	manager := newTestManager(contents, &backupStoreStub{},
		WithMaxSaveRetries(3),
		WithSaveBaseBackoff(baseBackoff),
	)

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	h, _ := manager.ActiveHandle()
	h.Append(block.New(block.KindParagraph, "content"))

	if err := manager.SaveDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	saves := contents.savedContents()
	if e, g := 1, len(saves); e != g {
		t.Fatalf("expected %d saves, got %d", e, g)
	}

	// Two failed attempts plus the successful one.
	attempts := contents.attemptTimes()
	if e, g := 3, len(attempts); e != g {
		t.Fatalf("expected %d save attempts, got %d", e, g)
	}

	// The wait doubles between attempts, starting at the base backoff.
	firstGap := attempts[1].Sub(attempts[0])
	secondGap := attempts[2].Sub(attempts[1])

	if firstGap < baseBackoff {
		t.Errorf("expected a gap of at least %s before the second attempt, got %s", baseBackoff, firstGap)
	}

	if secondGap < 2*baseBackoff {
		t.Errorf("expected a gap of at least %s before the third attempt, got %s", 2*baseBackoff, secondGap)
	}

	if maxGap := 10 * baseBackoff; firstGap > maxGap || secondGap > maxGap {
		t.Errorf("expected gaps below %s, got %s then %s", maxGap, firstGap, secondGap)
	}

	state, _ := manager.State()
	if e, g := StateSaved, state; e != g {
		t.Errorf("expected state '%v', got '%v'", e, g)
	}
}

func TestTerminalSaveFailure(t *testing.T) {
	contents := &contentStoreStub{
		contents: map[model.NodeID]string{"doc-1": ""},
		failures: 10,
	}
	backups := &backupStoreStub{}

	manager := newTestManager(contents, backups, WithMaxSaveRetries(1))

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	h, _ := manager.ActiveHandle()
	h.Append(block.New(block.KindParagraph, "unsaved edit"))

	err := manager.SaveDocument(context.Background(), "doc-1")
	if err == nil {
		t.Fatal("expected an error")
	}

	state, stateErr := manager.State()
	if e, g := StateError, state; e != g {
		t.Errorf("expected state '%v', got '%v'", e, g)
	}
	if stateErr == nil {
		t.Error("expected a state error")
	}

	change, err := backups.GetPending(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "unsaved edit", change.Content; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	if change.Timestamp.IsZero() {
		t.Error("expected a non-zero pending change timestamp")
	}
}

func TestPendingClearedAfterSuccessfulSave(t *testing.T) {
	contents := &contentStoreStub{
		contents: map[model.NodeID]string{"doc-1": ""},
	}
	backups := &backupStoreStub{}

	if err := backups.SavePending(context.Background(), model.PendingChange{
		Identifier: "doc-1",
		Content:    "stale",
		Timestamp:  time.Now(),
	}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	manager := newTestManager(contents, backups)

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	h, _ := manager.ActiveHandle()
	h.Append(block.New(block.KindParagraph, "fresh"))

	if err := manager.SaveDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if _, err := backups.GetPending(context.Background(), "doc-1"); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected port.ErrNotFound, got %+v", err)
	}
}

func TestDisposeCancelsPendingSave(t *testing.T) {
	contents := &contentStoreStub{contents: map[model.NodeID]string{
		"doc-1": "",
	}}

	manager := newTestManager(contents, &backupStoreStub{})

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	h, _ := manager.ActiveHandle()
	h.Append(block.New(block.KindParagraph, "discarded"))

	manager.DisposeCurrentDoc()

	if e, g := true, h.Disposed(); e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}

	time.Sleep(100 * time.Millisecond)

	if e, g := 0, len(contents.savedContents()); e != g {
		t.Errorf("expected %d saves, got %d", e, g)
	}

	state, _ := manager.State()
	if e, g := StateIdle, state; e != g {
		t.Errorf("expected state '%v', got '%v'", e, g)
	}

	// Disposing twice is safe.
	manager.DisposeCurrentDoc()
}

func TestSaveDocumentNotActive(t *testing.T) {
	manager := newTestManager(&contentStoreStub{contents: map[model.NodeID]string{
		"doc-1": "",
	}}, &backupStoreStub{})

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	err := manager.SaveDocument(context.Background(), "doc-other")
	if !errors.Is(err, ErrNoActiveDocument) {
		t.Errorf("expected ErrNoActiveDocument, got %+v", err)
	}
}

func TestContentSubscribers(t *testing.T) {
	contents := &contentStoreStub{contents: map[model.NodeID]string{
		"doc-1": "",
	}}

	manager := newTestManager(contents, &backupStoreStub{})

	var (
		mu       sync.Mutex
		received []string
	)

	unsubscribe := manager.SubscribeContent("doc-1", func(text string) {
		mu.Lock()
		defer mu.Unlock()

		received = append(received, text)
	})
	defer unsubscribe()

	// A throwing subscriber must not starve the others.
	manager.SubscribeContent("doc-1", func(text string) {
		panic("boom")
	})

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	h, _ := manager.ActiveHandle()
	h.Append(block.New(block.KindParagraph, "hello"))

	mu.Lock()
	defer mu.Unlock()

	if e, g := 1, len(received); e != g {
		t.Fatalf("expected %d notifications, got %d", e, g)
	}

	if e, g := "hello", received[0]; e != g {
		t.Errorf("expected '%v', got '%v'", e, g)
	}
}

func TestStateSubscribers(t *testing.T) {
	contents := &contentStoreStub{contents: map[model.NodeID]string{
		"doc-1": "",
	}}

	manager := newTestManager(contents, &backupStoreStub{})

	var (
		mu     sync.Mutex
		states []State
	)

	unsubscribe := manager.SubscribeState(func(state State, err error) {
		mu.Lock()
		defer mu.Unlock()

		states = append(states, state)
	})
	defer unsubscribe()

	if err := manager.LoadDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	mu.Lock()
	defer mu.Unlock()

	expected := []State{StateLoading, StateSaved}

	if e, g := len(expected), len(states); e != g {
		t.Fatalf("expected %d transitions, got %d: %v", e, g, states)
	}

	for i := range expected {
		if e, g := expected[i], states[i]; e != g {
			t.Errorf("states[%d]: expected '%v', got '%v'", i, e, g)
		}
	}
}
