package setup

import (
	"context"

	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/editor/binding"
	"github.com/pkg/errors"
)

// NewEditorBindingFromConfig builds a surface binding over the shared
// lifecycle manager, tuned from the editor config. The surface factory and
// callbacks come from the embedding UI layer.
func NewEditorBindingFromConfig(ctx context.Context, conf *config.Config, newSurface binding.SurfaceFactory, callbacks binding.Callbacks) (*binding.Binding, error) {
	manager, err := NewLifecycleManagerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create lifecycle manager from config")
	}

	b := binding.New(manager, newSurface,
		binding.WithInitTimeout(conf.Editor.InitTimeout),
		binding.WithMaxInitFailures(conf.Editor.MaxInitFailures),
		binding.WithCallbacks(callbacks),
	)

	return b, nil
}
