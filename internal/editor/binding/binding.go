package binding

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/editor/convert"
	"github.com/bornholm/quill/internal/editor/handle"
	"github.com/bornholm/quill/internal/editor/lifecycle"
	"github.com/bornholm/quill/internal/metrics"
	"github.com/pkg/errors"
)

var (
	ErrAlreadyMounted = errors.New("already mounted")
	ErrNotMounted     = errors.New("not mounted")
	ErrInitTimeout    = errors.New("surface initialization timed out")
)

type Mode string

const (
	ModeUninitialized Mode = "uninitialized"
	ModeInitializing  Mode = "initializing"
	ModeReady         Mode = "ready"
	ModeError         Mode = "error"
	ModeFallback      Mode = "fallback"
)

// Binding mounts an editable surface against the document lifecycle
// manager. It re-binds cleanly across document switches, tears down fully on
// unmount, and after repeated surface initialization failures permanently
// downgrades to the plain-text fallback surface so the user never loses the
// ability to edit.
type Binding struct {
	manager    *lifecycle.Manager
	newSurface SurfaceFactory

	initTimeout     time.Duration
	settleDelay     time.Duration
	maxInitFailures int
	callbacks       Callbacks

	mu           sync.Mutex
	mode         Mode
	docID        model.NodeID
	surface      Surface
	failures     int
	readyFired   bool
	mounted      bool
	unsubState   func()
	unsubContent func()
}

func New(manager *lifecycle.Manager, newSurface SurfaceFactory, funcs ...OptionFunc) *Binding {
	opts := NewOptions(funcs...)

	return &Binding{
		manager:         manager,
		newSurface:      newSurface,
		initTimeout:     opts.InitTimeout,
		settleDelay:     opts.SettleDelay,
		maxInitFailures: opts.MaxInitFailures,
		callbacks:       opts.Callbacks,
		mode:            ModeUninitialized,
	}
}

// Mount binds the surface to the given document. A binding mounts once;
// document switches go through SetDocument.
func (b *Binding) Mount(ctx context.Context, id model.NodeID) error {
	b.mu.Lock()

	if b.mounted {
		b.mu.Unlock()
		return errors.WithStack(ErrAlreadyMounted)
	}

	b.mounted = true
	b.mu.Unlock()

	b.unsubState = b.manager.SubscribeState(func(state lifecycle.State, err error) {
		if b.callbacks.OnSaveStatusChange != nil {
			callSafely(func() {
				b.callbacks.OnSaveStatusChange(state)
			})
		}

		if state == lifecycle.StateError && err != nil {
			b.emitError(err)
		}
	})

	return b.bind(ctx, id)
}

// SetDocument re-binds the surface to another document: the outgoing
// document is fully disposed, then after a brief settle delay the incoming
// one is loaded and the surface re-initialized. The delay keeps teardown of
// the underlying surface from racing its own setup.
func (b *Binding) SetDocument(ctx context.Context, id model.NodeID) error {
	b.mu.Lock()

	if !b.mounted {
		b.mu.Unlock()
		return errors.WithStack(ErrNotMounted)
	}

	same := b.docID == id
	b.mu.Unlock()

	if same {
		return nil
	}

	b.teardownDocument()

	time.Sleep(b.settleDelay)

	return b.bind(ctx, id)
}

// Unmount fully tears the binding down. Idempotent, also with the manual
// disposal paths.
func (b *Binding) Unmount() {
	b.mu.Lock()

	if !b.mounted {
		b.mu.Unlock()
		return
	}

	b.mounted = false
	unsubState := b.unsubState
	b.unsubState = nil
	b.mu.Unlock()

	b.teardownDocument()

	if unsubState != nil {
		unsubState()
	}
}

// Retry attempts surface initialization again after a failure, against the
// currently bound document. On an already ready binding it is a no-op: the
// live surface stays mounted.
func (b *Binding) Retry(ctx context.Context) error {
	b.mu.Lock()

	if !b.mounted {
		b.mu.Unlock()
		return errors.WithStack(ErrNotMounted)
	}

	if b.mode == ModeReady {
		b.mu.Unlock()
		return nil
	}

	b.mu.Unlock()

	return b.initializeSurface(ctx)
}

// ApplyText pushes an edited whole-document text into the bound handle. On
// the rich path this is an edit: subscribers fire and the debounced save is
// scheduled. On the fallback path the content is replaced without touching
// the debounce machinery; persistence happens through explicit SaveNow
// calls only.
func (b *Binding) ApplyText(ctx context.Context, text string) error {
	h, exists := b.manager.ActiveHandle()
	if !exists {
		return errors.WithStack(lifecycle.ErrNoActiveDocument)
	}

	b.mu.Lock()
	mode := b.mode
	b.mu.Unlock()

	convert.TextToDocument(text, h)

	if mode == ModeFallback {
		return nil
	}

	h.Touch()

	return nil
}

// SaveNow persists the bound document immediately. This is the manual save
// trigger (and keyboard shortcut target) of both surfaces; on the fallback
// surface it is the only save path.
func (b *Binding) SaveNow(ctx context.Context) error {
	if err := b.manager.ForceSave(ctx); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (b *Binding) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.mode
}

func (b *Binding) DocumentID() model.NodeID {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.docID
}

func (b *Binding) bind(ctx context.Context, id model.NodeID) error {
	if err := b.manager.LoadDocument(ctx, id); err != nil {
		b.mu.Lock()
		b.mode = ModeError
		b.mu.Unlock()

		b.emitError(err)

		return errors.WithStack(err)
	}

	unsubContent := b.manager.SubscribeContent(id, func(text string) {
		if b.callbacks.OnContentChange != nil {
			callSafely(func() {
				b.callbacks.OnContentChange(text)
			})
		}
	})

	b.mu.Lock()
	b.docID = id
	b.unsubContent = unsubContent
	b.mu.Unlock()

	return b.initializeSurface(ctx)
}

func (b *Binding) initializeSurface(ctx context.Context) error {
	h, exists := b.manager.ActiveHandle()
	if !exists {
		return errors.WithStack(lifecycle.ErrNoActiveDocument)
	}

	b.mu.Lock()

	if b.mode == ModeFallback {
		// Fallback is permanent for this binding's lifetime.
		b.mu.Unlock()
		b.mountFallback(ctx, h)
		return nil
	}

	b.mode = ModeInitializing
	b.mu.Unlock()

	surface := b.newSurface()

	initCtx, cancel := context.WithTimeout(ctx, b.initTimeout)
	defer cancel()

	errs := make(chan error, 1)

	go func() {
		errs <- surface.Initialize(initCtx, h)
	}()

	var err error

	select {
	case err = <-errs:
	case <-initCtx.Done():
		err = errors.Wrapf(ErrInitTimeout, "no response after %s", b.initTimeout)
	}

	if err != nil {
		if disposeErr := surface.Dispose(); disposeErr != nil {
			slog.Warn("could not dispose failed surface", slogx.Error(errors.WithStack(disposeErr)))
		}

		b.mu.Lock()
		b.failures++
		failures := b.failures
		b.mode = ModeError
		b.mu.Unlock()

		b.emitError(err)

		if failures >= b.maxInitFailures {
			slog.Warn("surface failed repeatedly, switching to plain-text fallback", slog.Int("failures", failures), slog.String("documentID", string(h.ID())))

			b.mountFallback(ctx, h)
		}

		return errors.WithStack(err)
	}

	b.mu.Lock()
	b.surface = surface
	b.mode = ModeReady
	b.failures = 0
	readyFired := b.readyFired
	b.readyFired = true
	b.mu.Unlock()

	if !readyFired && b.callbacks.OnEditorReady != nil {
		callSafely(b.callbacks.OnEditorReady)
	}

	return nil
}

func (b *Binding) mountFallback(ctx context.Context, h *handle.Handle) {
	metrics.TotalFallbackMounts.Inc()

	fallback := NewTextSurface()

	// The text surface cannot fail to initialize.
	_ = fallback.Initialize(ctx, h)

	b.mu.Lock()
	b.surface = fallback
	b.mode = ModeFallback
	b.mu.Unlock()
}

func (b *Binding) teardownDocument() {
	b.mu.Lock()
	surface := b.surface
	b.surface = nil
	unsubContent := b.unsubContent
	b.unsubContent = nil
	b.docID = ""
	b.mu.Unlock()

	if unsubContent != nil {
		unsubContent()
	}

	if surface != nil {
		if err := surface.Dispose(); err != nil {
			slog.Warn("could not dispose surface", slogx.Error(errors.WithStack(err)))
		}
	}

	b.manager.DisposeCurrentDoc()
}

func (b *Binding) emitError(err error) {
	if b.callbacks.OnError == nil {
		return
	}

	callSafely(func() {
		b.callbacks.OnError(err)
	})
}

// callSafely keeps a throwing UI callback from crashing the binding.
func callSafely(fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err, ok := recovered.(error)
			if !ok {
				err = errors.Errorf("%+v", recovered)
			}

			slog.Error("recovered panic in binding callback", slogx.Error(errors.WithStack(err)))
		}
	}()

	fn()
}
