package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
	"github.com/actuallystonmai/canteen-recommendation/internal/metrics"
	"github.com/actuallystonmai/canteen-recommendation/internal/parser"
	"github.com/actuallystonmai/canteen-recommendation/internal/scoring"
)

// Calorie thresholds for a whole menu, in kcal.
const (
	LowCalorieThreshold  = 400.0
	HighCalorieThreshold = 1200.0
)

// Healthy shares of macro calories, in percent.
const (
	ProteinShareMin      = 10.0
	ProteinShareMax      = 35.0
	CarbohydrateShareMin = 45.0
	CarbohydrateShareMax = 65.0
	FatShareMin          = 20.0
	FatShareMax          = 35.0
)

// kcal per gram
const (
	proteinKcal      = 4.0
	carbohydrateKcal = 4.0
	fatKcal          = 9.0
)

var errNotObject = errors.New("reply is not a JSON object")

// NutritionService estimates and explains the nutrition of a menu. Unlike
// recommendations, every model problem here is absorbed: the caller gets a
// locally computed answer instead.
type NutritionService struct {
	menus   MenuRepository
	llm     Completer
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewNutritionService(menus MenuRepository, llm Completer, m *metrics.Metrics, logger *zap.Logger) *NutritionService {
	return &NutritionService{
		menus:   menus,
		llm:     llm,
		metrics: m,
		logger:  logger.Named("nutrition"),
	}
}

// AnalyzeTotals estimates the combined calories and macros of a menu.
func (s *NutritionService) AnalyzeTotals(ctx context.Context, menuID int64) (domain.NutritionTotals, error) {
	menu, err := loadMenu(ctx, s.menus, menuID)
	if err != nil {
		return domain.NutritionTotals{}, err
	}

	messages, err := totalsPrompt(menu)
	if err != nil {
		return domain.NutritionTotals{}, fmt.Errorf("build totals prompt: %w", err)
	}

	reply, err := complete(ctx, s.llm, messages, func(reply string) bool {
		_, err := parseTotals(reply)
		return err == nil
	})
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.ModelCall(opAnalyzeTotals, metrics.OutcomeCancelled)
			return domain.NutritionTotals{}, cancelled(ctx)
		}
		s.metrics.ModelCall(opAnalyzeTotals, metrics.OutcomeFailure)
		return s.localTotals(menu, reasonCallFailed, err), nil
	}
	s.metrics.ModelCall(opAnalyzeTotals, metrics.OutcomeSuccess)

	totals, err := parseTotals(reply)
	if err != nil {
		return s.localTotals(menu, reasonInvalidOutput, err), nil
	}
	return totals, nil
}

// AssessHealth explains in a sentence or two how healthy a menu is.
func (s *NutritionService) AssessHealth(ctx context.Context, menuID int64) (domain.NutritionAssessment, error) {
	menu, err := loadMenu(ctx, s.menus, menuID)
	if err != nil {
		return domain.NutritionAssessment{}, err
	}

	messages, err := assessmentPrompt(menu)
	if err != nil {
		return domain.NutritionAssessment{}, fmt.Errorf("build assessment prompt: %w", err)
	}

	reply, err := complete(ctx, s.llm, messages, func(reply string) bool {
		_, err := parseAssessment(reply, menu.ID)
		return err == nil
	})
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.ModelCall(opAssessHealth, metrics.OutcomeCancelled)
			return domain.NutritionAssessment{}, cancelled(ctx)
		}
		s.metrics.ModelCall(opAssessHealth, metrics.OutcomeFailure)
		return s.localAssessment(menu, reasonCallFailed, err), nil
	}
	s.metrics.ModelCall(opAssessHealth, metrics.OutcomeSuccess)

	reasoning, err := parseAssessment(reply, menu.ID)
	if err != nil {
		return s.localAssessment(menu, reasonInvalidOutput, err), nil
	}
	return domain.NutritionAssessment{MenuID: menu.ID, Reasoning: reasoning}, nil
}

func (s *NutritionService) localTotals(menu *domain.Menu, reason string, cause error) domain.NutritionTotals {
	s.logger.Warn("using local nutrition totals",
		zap.Int64("menu_id", menu.ID), zap.String("reason", reason), zap.Error(cause))
	s.metrics.Fallback(opAnalyzeTotals, reason)
	return scoring.SumNutrition(menu.Meals)
}

func (s *NutritionService) localAssessment(menu *domain.Menu, reason string, cause error) domain.NutritionAssessment {
	s.logger.Warn("using local health assessment",
		zap.Int64("menu_id", menu.ID), zap.String("reason", reason), zap.Error(cause))
	s.metrics.Fallback(opAssessHealth, reason)
	return buildLocalAssessment(menu, scoring.SumNutrition(menu.Meals))
}

func parseTotals(reply string) (domain.NutritionTotals, error) {
	doc, ok := parser.ExtractObject(reply)
	if !ok {
		return domain.NutritionTotals{}, errNotObject
	}

	var totals domain.NutritionTotals
	fields := []struct {
		name  string
		alias string
		dst   *float64
	}{
		{"calories", "calorie", &totals.Calories},
		{"proteins", "protein", &totals.Proteins},
		{"carbohydrates", "carbs", &totals.Carbohydrates},
		{"fats", "fat", &totals.Fats},
	}

	for _, f := range fields {
		v, ok := parser.ExtractNumber(doc, f.name, f.alias)
		if !ok {
			return domain.NutritionTotals{}, fmt.Errorf("field %q missing or not numeric", f.name)
		}
		if v < 0 {
			return domain.NutritionTotals{}, fmt.Errorf("field %q is negative", f.name)
		}
		*f.dst = v
	}
	return totals, nil
}

func parseAssessment(reply string, menuID int64) (string, error) {
	doc, ok := parser.ExtractObject(reply)
	if !ok {
		return "", errNotObject
	}

	if doc.Get("menuId").Exists() {
		got, ok := parser.ExtractNumber(doc, "menuId")
		if !ok || got != float64(menuID) {
			return "", fmt.Errorf("reply is for menu %s, want %d", doc.Get("menuId").Raw, menuID)
		}
	}

	reasoning := doc.Get("reasoning")
	if reasoning.Type != gjson.String || strings.TrimSpace(reasoning.Str) == "" {
		return "", errors.New("reasoning missing or empty")
	}
	return strings.TrimSpace(reasoning.Str), nil
}

// buildLocalAssessment flags calorie totals and macro shares that fall
// outside the healthy ranges, always quoting the totals it used.
func buildLocalAssessment(menu *domain.Menu, totals domain.NutritionTotals) domain.NutritionAssessment {
	summary := fmt.Sprintf("%.0f kcal, %.1f g protein, %.1f g carbohydrates, %.1f g fat",
		totals.Calories, totals.Proteins, totals.Carbohydrates, totals.Fats)

	if totals.Calories <= 0 {
		return domain.NutritionAssessment{
			MenuID: menu.ID,
			Reasoning: fmt.Sprintf("Menu %q has insufficient data for an assessment because its meals report no calories (totals: %s).",
				menu.Name, summary),
		}
	}

	var flags []string
	switch {
	case totals.Calories < LowCalorieThreshold:
		flags = append(flags, fmt.Sprintf("total calories are low (below %.0f kcal)", LowCalorieThreshold))
	case totals.Calories > HighCalorieThreshold:
		flags = append(flags, fmt.Sprintf("total calories are high (above %.0f kcal)", HighCalorieThreshold))
	}

	proteinCal := totals.Proteins * proteinKcal
	carbCal := totals.Carbohydrates * carbohydrateKcal
	fatCal := totals.Fats * fatKcal
	macroCal := proteinCal + carbCal + fatCal

	if macroCal <= 0 {
		flags = append(flags, "no macro breakdown available")
	} else {
		flags = appendShareFlag(flags, "protein", 100*proteinCal/macroCal, ProteinShareMin, ProteinShareMax)
		flags = appendShareFlag(flags, "carbohydrate", 100*carbCal/macroCal, CarbohydrateShareMin, CarbohydrateShareMax)
		flags = appendShareFlag(flags, "fat", 100*fatCal/macroCal, FatShareMin, FatShareMax)
	}

	var reasoning string
	if len(flags) == 0 {
		reasoning = fmt.Sprintf("Menu %q looks balanced, with calories and macronutrient shares within recommended ranges (totals: %s).",
			menu.Name, summary)
	} else {
		reasoning = fmt.Sprintf("Menu %q needs attention: %s (totals: %s).",
			menu.Name, strings.Join(flags, "; "), summary)
	}
	return domain.NutritionAssessment{MenuID: menu.ID, Reasoning: reasoning}
}

func appendShareFlag(flags []string, macro string, share, lo, hi float64) []string {
	if share >= lo && share <= hi {
		return flags
	}
	return append(flags, fmt.Sprintf("%s provides %.1f%% of macro calories (healthy range %.0f-%.0f%%)",
		macro, share, lo, hi))
}
