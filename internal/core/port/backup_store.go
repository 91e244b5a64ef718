package port

import (
	"context"

	"github.com/bornholm/quill/internal/core/model"
)

// BackupStore persists pending-change records outside the primary store so
// that a terminally failed save never loses the user's content.
type BackupStore interface {
	SavePending(ctx context.Context, change model.PendingChange) error
	GetPending(ctx context.Context, id model.NodeID) (*model.PendingChange, error)
	ClearPending(ctx context.Context, id model.NodeID) error
}
