package lifecycle

import "time"

type Options struct {
	DebounceInterval time.Duration
	MaxSaveRetries   int
	SaveBaseBackoff  time.Duration
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		DebounceInterval: time.Second,
		MaxSaveRetries:   3,
		SaveBaseBackoff:  time.Second,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

func WithDebounceInterval(interval time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.DebounceInterval = interval
	}
}

func WithMaxSaveRetries(maxRetries int) OptionFunc {
	return func(opts *Options) {
		opts.MaxSaveRetries = maxRetries
	}
}

func WithSaveBaseBackoff(baseBackoff time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.SaveBaseBackoff = baseBackoff
	}
}
