package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
)

func (r *Repository) GetGoalsByUser(ctx context.Context, userID int64) ([]domain.NutritionGoal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, calories, protein, carbohydrates, fat, date_set
		FROM nutrition_goals
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query goals for user %d: %w", userID, err)
	}
	defer rows.Close()

	var goals []domain.NutritionGoal
	for rows.Next() {
		var g domain.NutritionGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Calories, &g.Protein, &g.Carbohydrates, &g.Fat, &g.DateSet); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}
