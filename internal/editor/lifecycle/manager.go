package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/bornholm/quill/internal/editor/convert"
	"github.com/bornholm/quill/internal/editor/handle"
	"github.com/bornholm/quill/internal/metrics"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/xid"
)

var ErrNoActiveDocument = errors.New("no active document")

// Manager orchestrates the load/edit/debounced-save/dispose cycle of the
// active document: it pairs the content store with the handle registry,
// tracks the lifecycle state machine and exposes subscription hooks for the
// UI layer.
type Manager struct {
	registry *handle.Registry
	contents port.ContentStore
	backups  port.BackupStore

	debounceInterval time.Duration
	maxSaveRetries   int
	saveBaseBackoff  time.Duration

	mu      sync.Mutex
	active  *session
	state   State
	lastErr error

	stateSubscribers   *xsync.MapOf[string, StateFunc]
	contentSubscribers *xsync.MapOf[model.NodeID, *xsync.MapOf[string, ContentFunc]]
}

// session scopes the mutable per-document state so that a stray callback
// from a disposed document can never touch its successor.
type session struct {
	id          model.NodeID
	handle      *handle.Handle
	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc

	timerMu sync.Mutex
	timer   *time.Timer

	// saveMu serializes saves: a new save is never issued while a previous
	// attempt, including its backoff waits, is still in flight.
	saveMu sync.Mutex
}

func NewManager(registry *handle.Registry, contents port.ContentStore, backups port.BackupStore, funcs ...OptionFunc) *Manager {
	opts := NewOptions(funcs...)

	return &Manager{
		registry:           registry,
		contents:           contents,
		backups:            backups,
		debounceInterval:   opts.DebounceInterval,
		maxSaveRetries:     opts.MaxSaveRetries,
		saveBaseBackoff:    opts.SaveBaseBackoff,
		state:              StateIdle,
		stateSubscribers:   xsync.NewMapOf[string, StateFunc](),
		contentSubscribers: xsync.NewMapOf[model.NodeID, *xsync.MapOf[string, ContentFunc]](),
	}
}

// LoadDocument makes id the active document. Any previously active document
// is fully torn down before the new load begins. On failure the state
// transitions to error and the error is returned to the caller, which
// decides whether to retry or show a fallback.
func (m *Manager) LoadDocument(ctx context.Context, id model.NodeID) error {
	m.DisposeCurrentDoc()

	m.setState(StateLoading, nil)

	content, err := m.contents.GetContent(ctx, id)
	if err != nil {
		err = errors.Wrapf(err, "could not load content of document '%s'", id)
		m.setState(StateError, err)
		return err
	}

	h := m.registry.GetOrCreate(id)

	convert.TextToDocument(content, h)

	sessCtx, cancel := context.WithCancel(context.Background())

	sess := &session{
		id:     id,
		handle: h,
		ctx:    sessCtx,
		cancel: cancel,
	}

	sess.unsubscribe = h.Subscribe(func() {
		m.handleChange(sess)
	})

	m.mu.Lock()
	m.active = sess
	m.mu.Unlock()

	metrics.TotalDocumentLoads.Inc()

	m.setState(StateSaved, nil)

	return nil
}

func (m *Manager) handleChange(sess *session) {
	if sess.ctx.Err() != nil {
		return
	}

	// The read path is immediate: content subscribers always see the latest
	// converted text, only the durable write is debounced.
	m.notifyContent(sess.id, convert.DocumentToText(sess.handle))

	sess.timerMu.Lock()
	defer sess.timerMu.Unlock()

	if sess.timer != nil {
		sess.timer.Stop()
	}

	sess.timer = time.AfterFunc(m.debounceInterval, func() {
		if err := m.saveSession(sess); err != nil {
			slog.Error("could not save document", slogx.Error(errors.WithStack(err)), slog.String("documentID", string(sess.id)))
		}
	})
}

// SaveDocument persists the given document immediately, bypassing the
// debounce timer. It errors if id is not the active document.
func (m *Manager) SaveDocument(ctx context.Context, id model.NodeID) error {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess == nil || sess.id != id {
		return errors.Wrapf(ErrNoActiveDocument, "document '%s' is not active", id)
	}

	sess.stopTimer()

	return m.saveSession(sess)
}

// ForceSave persists the active document immediately. It errors when no
// document is active.
func (m *Manager) ForceSave(ctx context.Context) error {
	m.mu.Lock()
	sess := m.active
	m.mu.Unlock()

	if sess == nil {
		return errors.WithStack(ErrNoActiveDocument)
	}

	sess.stopTimer()

	return m.saveSession(sess)
}

func (m *Manager) saveSession(sess *session) error {
	sess.saveMu.Lock()
	defer sess.saveMu.Unlock()

	if sess.ctx.Err() != nil {
		return nil
	}

	m.setState(StateSaving, nil)

	text := convert.DocumentToText(sess.handle)

	backoff := m.saveBaseBackoff
	retries := 0

	for {
		err := m.contents.SaveContent(sess.ctx, sess.id, text)
		if err == nil {
			break
		}

		if retries >= m.maxSaveRetries {
			return m.handleTerminalSaveFailure(sess, text, err)
		}

		slog.DebugContext(sess.ctx, "save failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slogx.Error(errors.WithStack(err)))

		metrics.TotalSaveRetries.Inc()
		retries++

		select {
		case <-sess.ctx.Done():
			// The document was disposed mid-retry: its eventual result must
			// not bleed into whatever document is active now.
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	if sess.ctx.Err() != nil {
		return nil
	}

	if err := m.backups.ClearPending(sess.ctx, sess.id); err != nil {
		slog.Warn("could not clear pending change backup", slogx.Error(errors.WithStack(err)), slog.String("documentID", string(sess.id)))
	}

	metrics.TotalDocumentSaves.Inc()

	m.setState(StateSaved, nil)

	return nil
}

func (m *Manager) handleTerminalSaveFailure(sess *session, text string, saveErr error) error {
	metrics.TotalSaveFailures.Inc()

	change := model.PendingChange{
		Identifier: sess.id,
		Content:    text,
		Timestamp:  time.Now(),
	}

	if err := m.backups.SavePending(context.Background(), change); err != nil {
		slog.Error("could not write pending change backup", slogx.Error(errors.WithStack(err)), slog.String("documentID", string(sess.id)))
	}

	err := errors.Wrapf(saveErr, "could not save document '%s' after %d attempts", sess.id, m.maxSaveRetries+1)

	m.setState(StateError, err)

	return err
}

// DisposeCurrentDoc cancels the pending debounce timer, unsubscribes from
// the handle, disposes it through the registry and resets the state to
// idle. Safe to call when nothing is active.
func (m *Manager) DisposeCurrentDoc() {
	m.mu.Lock()
	sess := m.active
	m.active = nil
	m.mu.Unlock()

	if sess == nil {
		return
	}

	sess.cancel()
	sess.stopTimer()
	sess.unsubscribe()

	m.registry.Dispose(sess.id)

	m.setState(StateIdle, nil)
}

func (s *session) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// ActiveHandle returns the live handle of the active document, if any.
func (m *Manager) ActiveHandle() (*handle.Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, false
	}

	return m.active.handle, true
}

// ActiveDocument returns the identifier of the active document, if any.
func (m *Manager) ActiveDocument() (model.NodeID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return "", false
	}

	return m.active.id, true
}

func (m *Manager) State() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state, m.lastErr
}

// SubscribeState registers fn for every state transition. The returned
// function removes the subscription.
func (m *Manager) SubscribeState(fn StateFunc) func() {
	id := xid.New().String()
	m.stateSubscribers.Store(id, fn)

	return func() {
		m.stateSubscribers.Delete(id)
	}
}

// SubscribeContent registers fn for the converted text of docID after every
// edit. Subscribers are only notified while docID is the document whose
// handle is emitting changes.
func (m *Manager) SubscribeContent(docID model.NodeID, fn ContentFunc) func() {
	subscribers, _ := m.contentSubscribers.LoadOrCompute(docID, func() *xsync.MapOf[string, ContentFunc] {
		return xsync.NewMapOf[string, ContentFunc]()
	})

	id := xid.New().String()
	subscribers.Store(id, fn)

	return func() {
		subscribers.Delete(id)
	}
}

func (m *Manager) setState(state State, err error) {
	m.mu.Lock()
	m.state = state
	m.lastErr = err
	m.mu.Unlock()

	m.stateSubscribers.Range(func(_ string, fn StateFunc) bool {
		notifySafely(func() {
			fn(state, err)
		})

		return true
	})
}

func (m *Manager) notifyContent(docID model.NodeID, text string) {
	subscribers, exists := m.contentSubscribers.Load(docID)
	if !exists {
		return
	}

	subscribers.Range(func(_ string, fn ContentFunc) bool {
		notifySafely(func() {
			fn(text)
		})

		return true
	})
}

// notifySafely isolates subscriber panics: one throwing subscriber must not
// prevent the others from being notified nor crash the manager.
func notifySafely(fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err, ok := recovered.(error)
			if !ok {
				err = errors.Errorf("%+v", recovered)
			}

			slog.Error("recovered panic in lifecycle subscriber", slogx.Error(errors.WithStack(err)))
		}
	}()

	fn()
}
