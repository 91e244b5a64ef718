package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	sloghttp "github.com/samber/slog-http"
)

type Server struct {
	address string
	baseURL string
	handler http.Handler
}

func NewServer(funcs ...OptionFunc) *Server {
	opts := NewOptions(funcs...)

	mux := http.NewServeMux()

	for prefix, handler := range opts.Mounts {
		mountPoint := strings.TrimSuffix(opts.BaseURL, "/") + prefix
		mux.Handle(mountPoint, http.StripPrefix(strings.TrimSuffix(mountPoint, "/"), handler))
	}

	var handler http.Handler = mux

	// The UI is served from another origin during development, as in the
	// original deployment.
	handler = cors.AllowAll().Handler(handler)
	handler = sloghttp.New(slog.Default())(handler)

	return &Server{
		address: opts.Address,
		baseURL: opts.BaseURL,
		handler: handler,
	}
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.address,
		Handler: s.handler,
	}

	errs := make(chan error, 1)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- errors.WithStack(err)
			return
		}

		errs <- nil
	}()

	select {
	case err := <-errs:
		if err != nil {
			return errors.WithStack(err)
		}

		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("could not shutdown server gracefully", slogx.Error(errors.WithStack(err)))
		}

		return errors.WithStack(ctx.Err())
	}
}
