package history

import (
	"context"

	"go.uber.org/zap"

	"meal-planner/internal/logging"
	"meal-planner/internal/mealplan"
)

// Mirror saves to the backend and keeps a local copy. The backend is the
// source of truth; local failures are logged only.
type Mirror struct {
	remote *RemoteStore
	local  *SQLiteStore
	logger *zap.Logger
}

// NewMirror creates a Mirror. local may be nil.
func NewMirror(remote *RemoteStore, local *SQLiteStore, logger *zap.Logger) *Mirror {
	return &Mirror{remote: remote, local: local, logger: logging.OrNop(logger)}
}

// Save stores plan remotely, then locally, and returns the remote id.
func (m *Mirror) Save(ctx context.Context, plan mealplan.MealPlanData) (string, error) {
	id, err := m.remote.Save(ctx, plan)
	if err != nil {
		return "", err
	}
	if m.local != nil {
		if localID, err := m.local.SaveWithRemoteID(ctx, plan, id); err != nil {
			m.logger.Warn("failed to mirror meal plan locally", zap.String("remote_id", id), zap.Error(err))
		} else {
			m.logger.Debug("meal plan mirrored locally", zap.String("id", localID), zap.String("remote_id", id))
		}
	}
	return id, nil
}
