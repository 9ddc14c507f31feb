package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
	"github.com/actuallystonmai/canteen-recommendation/internal/metrics"
	"github.com/actuallystonmai/canteen-recommendation/internal/model"
	"github.com/actuallystonmai/canteen-recommendation/internal/parser"
	"github.com/actuallystonmai/canteen-recommendation/internal/scoring"
)

// menuFetchConcurrency bounds parallel menu lookups in RecommendForMenus.
const menuFetchConcurrency = 8

// RecommendationService asks the model to pick one meal for a user. When
// the model rejects our credentials it picks locally instead; any other
// model failure is reported to the caller.
type RecommendationService struct {
	menus   MenuRepository
	goals   *GoalResolver
	llm     Completer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRecommendationService(menus MenuRepository, goals *GoalResolver, llm Completer, m *metrics.Metrics, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		menus:   menus,
		goals:   goals,
		llm:     llm,
		metrics: m,
		logger:  logger.Named("recommendation"),
	}
}

func (s *RecommendationService) RecommendForMenu(ctx context.Context, menuID int64, userID *int64) (int64, error) {
	menu, err := loadMenu(ctx, s.menus, menuID)
	if err != nil {
		return 0, err
	}
	return s.Recommend(ctx, menu.Meals, userID)
}

// RecommendForDate chooses among every meal served on date.
func (s *RecommendationService) RecommendForDate(ctx context.Context, date time.Time, userID *int64) (int64, error) {
	menus, err := s.menus.GetMenusByDate(ctx, date)
	if err != nil {
		if ctx.Err() != nil {
			return 0, cancelled(ctx)
		}
		return 0, fmt.Errorf("fetch menus for %s: %w", date.Format(time.DateOnly), err)
	}

	meals := uniqueMeals(menus)
	if len(meals) == 0 {
		return 0, fmt.Errorf("%w: no meals served on %s", domain.ErrInvalidInput, date.Format(time.DateOnly))
	}
	return s.Recommend(ctx, meals, userID)
}

// RecommendForMenus chooses among the meals of several menus. Every menu
// must exist.
func (s *RecommendationService) RecommendForMenus(ctx context.Context, menuIDs []int64, userID *int64) (int64, error) {
	if len(menuIDs) == 0 {
		return 0, fmt.Errorf("%w: at least one menu id is required", domain.ErrInvalidInput)
	}

	menus := make([]domain.Menu, len(menuIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(menuFetchConcurrency)
	for i, id := range menuIDs {
		g.Go(func() error {
			menu, err := loadMenu(gctx, s.menus, id)
			if err != nil {
				return err
			}
			menus[i] = *menu
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return 0, cancelled(ctx)
		}
		return 0, err
	}

	return s.Recommend(ctx, uniqueMeals(menus), userID)
}

// Recommend returns the id of one meal from meals. userID is optional; when
// set, the user's active goal is sent along with the candidates.
func (s *RecommendationService) Recommend(ctx context.Context, meals []domain.Meal, userID *int64) (int64, error) {
	if len(meals) == 0 {
		return 0, fmt.Errorf("%w: no meals to choose from", domain.ErrInvalidInput)
	}

	var goal *domain.NutritionGoal
	if userID != nil {
		goal = s.goals.MostRecentGoal(ctx, *userID)
	}

	messages, err := recommendationPrompt(meals, goal)
	if err != nil {
		return 0, fmt.Errorf("build recommendation prompt: %w", err)
	}

	reply, err := complete(ctx, s.llm, messages, func(reply string) bool {
		id, ok := parser.ExtractSingleInteger(reply)
		return ok && containsMeal(meals, id)
	})
	if err != nil {
		return s.handleCallFailure(ctx, err, meals, goal)
	}
	s.metrics.ModelCall(opRecommend, metrics.OutcomeSuccess)

	id, ok := parser.ExtractSingleInteger(reply)
	if !ok {
		s.logger.Warn("model reply has no meal id", zap.String("reply", preview(reply)))
		return 0, fmt.Errorf("%w: reply contained no integer", domain.ErrInvalidModelOutput)
	}
	if !containsMeal(meals, id) {
		s.logger.Warn("model picked a meal outside the candidates",
			zap.Int64("meal_id", id), zap.Int("candidates", len(meals)))
		return 0, fmt.Errorf("%w: meal %d is not a candidate", domain.ErrInvalidModelOutput, id)
	}
	return id, nil
}

func (s *RecommendationService) handleCallFailure(ctx context.Context, err error, meals []domain.Meal, goal *domain.NutritionGoal) (int64, error) {
	if ctx.Err() != nil {
		s.metrics.ModelCall(opRecommend, metrics.OutcomeCancelled)
		return 0, cancelled(ctx)
	}
	s.metrics.ModelCall(opRecommend, metrics.OutcomeFailure)

	if model.Classify(err) == model.KindAuth {
		id := scoring.SelectFallback(meals, goal)
		s.logger.Warn("model unreachable, using local fallback",
			zap.Error(err), zap.Int64("meal_id", id), zap.Bool("has_goal", goal != nil))
		s.metrics.Fallback(opRecommend, reasonAuth)
		return id, nil
	}

	s.logger.Error("model call failed",
		zap.Error(err), zap.Int("candidates", len(meals)), zap.Bool("has_goal", goal != nil))
	return 0, fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
}

func containsMeal(meals []domain.Meal, id int64) bool {
	for _, m := range meals {
		if m.ID == id {
			return true
		}
	}
	return false
}
