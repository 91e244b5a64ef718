package binding

import (
	"time"

	"github.com/bornholm/quill/internal/editor/lifecycle"
)

type Callbacks struct {
	// OnContentChange is invoked with the converted text after every edit.
	OnContentChange func(text string)
	// OnSaveStatusChange is invoked on every lifecycle state transition.
	OnSaveStatusChange func(state lifecycle.State)
	// OnEditorReady is invoked once, after the first successful surface
	// initialization.
	OnEditorReady func()
	// OnError is invoked on every initialization or runtime failure, before
	// any fallback switch.
	OnError func(err error)
}

type Options struct {
	InitTimeout     time.Duration
	SettleDelay     time.Duration
	MaxInitFailures int
	Callbacks       Callbacks
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		InitTimeout:     10 * time.Second,
		SettleDelay:     50 * time.Millisecond,
		MaxInitFailures: 2,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithInitTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.InitTimeout = timeout
	}
}

func WithSettleDelay(delay time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.SettleDelay = delay
	}
}

func WithMaxInitFailures(maxFailures int) OptionFunc {
	return func(opts *Options) {
		opts.MaxInitFailures = maxFailures
	}
}

func WithCallbacks(callbacks Callbacks) OptionFunc {
	return func(opts *Options) {
		opts.Callbacks = callbacks
	}
}
