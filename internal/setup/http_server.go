package setup

import (
	"context"

	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/http"
	"github.com/bornholm/quill/internal/http/handler/metrics"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	api, err := getAPIHandlerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure api handler from config")
	}

	server := http.NewServer(
		http.WithAddress(conf.HTTP.Address),
		http.WithBaseURL(conf.HTTP.BaseURL),
		http.WithMount("/api/", api),
		http.WithMount("/metrics/", metrics.NewHandler()),
	)

	return server, nil
}
