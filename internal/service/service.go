package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
	"github.com/actuallystonmai/canteen-recommendation/internal/model"
)

// Operation names used as metric labels and log fields.
const (
	opRecommend     = "recommend"
	opAnalyzeTotals = "analyze_totals"
	opAssessHealth  = "assess_health"
)

// Fallback reasons.
const (
	reasonAuth          = "auth"
	reasonCallFailed    = "call_failed"
	reasonInvalidOutput = "invalid_output"
)

const replyPreviewLen = 200

type MenuRepository interface {
	GetMenuByID(ctx context.Context, menuID int64) (*domain.Menu, error)
	GetMenusByDate(ctx context.Context, date time.Time) ([]domain.Menu, error)
}

type GoalRepository interface {
	GetGoalsByUser(ctx context.Context, userID int64) ([]domain.NutritionGoal, error)
}

// Completer sends a chat to the model and returns its reply text.
type Completer interface {
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

// validatingCompleter is implemented by completers that keep replies, such
// as the redis cache. They keep a reply only when accept approves it.
type validatingCompleter interface {
	CompleteValidated(ctx context.Context, messages []model.Message, accept func(reply string) bool) (string, error)
}

// complete calls llm, letting a caching completer store the reply only when
// accept approves it.
func complete(ctx context.Context, llm Completer, messages []model.Message, accept func(reply string) bool) (string, error) {
	if vc, ok := llm.(validatingCompleter); ok {
		return vc.CompleteValidated(ctx, messages, accept)
	}
	return llm.Complete(ctx, messages)
}

// loadMenu fetches a menu that has at least one meal.
func loadMenu(ctx context.Context, menus MenuRepository, menuID int64) (*domain.Menu, error) {
	if menuID <= 0 {
		return nil, fmt.Errorf("%w: a valid menu id is required", domain.ErrInvalidInput)
	}

	menu, err := menus.GetMenuByID(ctx, menuID)
	if err != nil {
		if errors.Is(err, domain.ErrMenuNotFound) {
			return nil, fmt.Errorf("%w: menu %d not found", domain.ErrInvalidInput, menuID)
		}
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}
		return nil, fmt.Errorf("fetch menu %d: %w", menuID, err)
	}

	if len(menu.Meals) == 0 {
		return nil, fmt.Errorf("%w: menu %d has no meals", domain.ErrInvalidInput, menuID)
	}
	return menu, nil
}

// uniqueMeals flattens menus into one candidate list, keeping the first
// occurrence of each meal id.
func uniqueMeals(menus []domain.Menu) []domain.Meal {
	seen := make(map[int64]struct{})
	var meals []domain.Meal
	for _, menu := range menus {
		for _, meal := range menu.Meals {
			if _, ok := seen[meal.ID]; ok {
				continue
			}
			seen[meal.ID] = struct{}{}
			meals = append(meals, meal)
		}
	}
	return meals
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
}

func preview(reply string) string {
	if len(reply) > replyPreviewLen {
		return reply[:replyPreviewLen] + "..."
	}
	return reply
}
