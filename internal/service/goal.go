package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
)

// GoalResolver finds a user's active nutrition goal.
type GoalResolver struct {
	goals  GoalRepository
	logger *zap.Logger
}

func NewGoalResolver(goals GoalRepository, logger *zap.Logger) *GoalResolver {
	return &GoalResolver{goals: goals, logger: logger.Named("goals")}
}

// MostRecentGoal returns the goal with the latest DateSet, or nil when the
// user has none. Lookup failures are logged and read as "no goal" so that a
// recommendation can still be made.
func (r *GoalResolver) MostRecentGoal(ctx context.Context, userID int64) *domain.NutritionGoal {
	goals, err := r.goals.GetGoalsByUser(ctx, userID)
	if err != nil {
		r.logger.Warn("goal lookup failed, continuing without goal",
			zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}

	var latest *domain.NutritionGoal
	for i := range goals {
		if latest == nil || goals[i].DateSet.After(latest.DateSet) {
			latest = &goals[i]
		}
	}
	return latest
}
