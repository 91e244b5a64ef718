package setup

import (
	"context"

	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/http/handler/api"
	"github.com/pkg/errors"
)

func getAPIHandlerFromConfig(ctx context.Context, conf *config.Config) (*api.Handler, error) {
	nodeManager, err := getNodeManager(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create node manager from config")
	}

	return api.NewHandler(nodeManager), nil
}
