// Package scoring picks a meal without asking the model. The result depends
// only on its inputs, so the same candidates and goal always give the same id.
package scoring

import (
	"math"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
)

// Per-macro weights of the goal distance. They sum to 1.
const (
	CaloriesWeight      = 0.50
	ProteinWeight       = 0.25
	CarbohydratesWeight = 0.15
	FatWeight           = 0.10
)

const (
	// MissingFieldPenalty is the distance charged for a macro the meal does not report.
	MissingFieldPenalty = 1.0
	// MaxRelativeDifference caps a single macro's distance so near-zero targets cannot dominate.
	MaxRelativeDifference = 10.0
	// CompletenessBonus is subtracted per reported macro to break near-ties.
	CompletenessBonus = 0.0001

	minGoalDenominator = 1.0
)

// SelectFallback returns the id of the candidate closest to goal, or the
// most completely described candidate when goal is nil. Ties go to the
// lowest id. meals must not be empty.
func SelectFallback(meals []domain.Meal, goal *domain.NutritionGoal) int64 {
	if len(meals) == 0 {
		panic("scoring: SelectFallback called with no meals")
	}
	if goal == nil {
		return mostComplete(meals)
	}

	best := meals[0]
	bestScore := Score(best, *goal)
	for _, meal := range meals[1:] {
		score := Score(meal, *goal)
		if score < bestScore || (score == bestScore && meal.ID < best.ID) {
			best, bestScore = meal, score
		}
	}
	return best.ID
}

// Score is the weighted relative distance between a meal and a goal, minus
// the completeness bonus. Lower is better.
func Score(meal domain.Meal, goal domain.NutritionGoal) float64 {
	score := CaloriesWeight*relativeDifference(meal.Calories, goal.Calories) +
		ProteinWeight*relativeDifference(meal.Protein, goal.Protein) +
		CarbohydratesWeight*relativeDifference(meal.Carbohydrates, goal.Carbohydrates) +
		FatWeight*relativeDifference(meal.Fat, goal.Fat)

	return score - CompletenessBonus*float64(Completeness(meal))
}

// Completeness counts the macro fields a meal reports.
func Completeness(meal domain.Meal) int {
	n := 0
	for _, v := range []*float64{meal.Calories, meal.Protein, meal.Carbohydrates, meal.Fat} {
		if v != nil {
			n++
		}
	}
	return n
}

// SumNutrition adds up the macros of all meals, counting missing ones as zero.
func SumNutrition(meals []domain.Meal) domain.NutritionTotals {
	var totals domain.NutritionTotals
	for _, meal := range meals {
		totals.Calories += valueOrZero(meal.Calories)
		totals.Proteins += valueOrZero(meal.Protein)
		totals.Carbohydrates += valueOrZero(meal.Carbohydrates)
		totals.Fats += valueOrZero(meal.Fat)
	}
	return totals
}

func mostComplete(meals []domain.Meal) int64 {
	best := meals[0]
	bestCount := Completeness(best)
	for _, meal := range meals[1:] {
		count := Completeness(meal)
		if count > bestCount || (count == bestCount && meal.ID < best.ID) {
			best, bestCount = meal, count
		}
	}
	return best.ID
}

func relativeDifference(value *float64, target float64) float64 {
	if value == nil {
		return MissingFieldPenalty
	}
	d := math.Abs(*value-target) / math.Max(target, minGoalDenominator)
	return math.Min(d, MaxRelativeDifference)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
