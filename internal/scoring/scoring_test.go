package scoring

import (
	"math/rand"
	"testing"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
)

func f(v float64) *float64 { return &v }

func meal(id int64, cal, p, c, fat *float64) domain.Meal {
	return domain.Meal{ID: id, Calories: cal, Protein: p, Carbohydrates: c, Fat: fat}
}

func TestSelectFallbackNoGoalPrefersCompleteness(t *testing.T) {
	meals := []domain.Meal{
		meal(1, nil, nil, nil, nil),
		meal(2, f(200), nil, nil, nil),
		meal(3, f(100), f(10), nil, nil),
		meal(4, f(100), f(10), f(5), nil),
	}

	if got := SelectFallback(meals, nil); got != 4 {
		t.Errorf("expected meal 4, got %d", got)
	}
}

func TestSelectFallbackNoGoalTieBreaksOnLowestID(t *testing.T) {
	meals := []domain.Meal{
		meal(9, f(1), f(1), nil, nil),
		meal(5, f(2), nil, f(2), nil),
		meal(7, nil, f(3), f(3), nil),
	}

	if got := SelectFallback(meals, nil); got != 5 {
		t.Errorf("expected meal 5, got %d", got)
	}
}

func TestSelectFallbackWeighted(t *testing.T) {
	meals := []domain.Meal{
		meal(10, f(300), f(10), f(20), f(5)),
		meal(11, f(600), f(30), f(80), f(20)),
		meal(12, f(1200), f(50), f(120), f(50)),
	}
	goal := &domain.NutritionGoal{Calories: 650, Protein: 35, Carbohydrates: 80, Fat: 20}

	if got := SelectFallback(meals, goal); got != 11 {
		t.Errorf("expected meal 11, got %d", got)
	}
}

func TestSelectFallbackExactMatch(t *testing.T) {
	goal := &domain.NutritionGoal{Calories: 700, Protein: 40, Carbohydrates: 90, Fat: 25}
	meals := []domain.Meal{
		meal(1, f(200), f(5), f(20), f(2)),
		meal(2, f(700), f(40), f(90), f(25)),
		meal(3, f(1500), f(90), f(200), f(70)),
	}

	if got := SelectFallback(meals, goal); got != 2 {
		t.Errorf("expected exact match 2, got %d", got)
	}
}

func TestMissingFieldsScoreWorse(t *testing.T) {
	goal := domain.NutritionGoal{Calories: 500, Protein: 30, Carbohydrates: 60, Fat: 15}
	empty := meal(1, nil, nil, nil, nil)
	full := meal(1, f(500), f(30), f(60), f(15))

	if Score(empty, goal) <= Score(full, goal) {
		t.Errorf("empty meal should score worse: empty=%f full=%f", Score(empty, goal), Score(full, goal))
	}

	meals := []domain.Meal{meal(1, nil, nil, nil, nil), meal(2, f(500), f(30), f(60), f(15))}
	if got := SelectFallback(meals, &goal); got != 2 {
		t.Errorf("expected populated meal 2, got %d", got)
	}
}

func TestRelativeDifferenceClamped(t *testing.T) {
	// target below 1 uses 1 as the denominator, then the distance is capped
	if got := relativeDifference(f(1000), 0); got != MaxRelativeDifference {
		t.Errorf("expected clamp at %v, got %v", MaxRelativeDifference, got)
	}
	if got := relativeDifference(nil, 100); got != MissingFieldPenalty {
		t.Errorf("expected missing penalty, got %v", got)
	}
	if got := relativeDifference(f(150), 100); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestSelectFallbackTieGoesToLowestID(t *testing.T) {
	goal := &domain.NutritionGoal{Calories: 500, Protein: 30, Carbohydrates: 60, Fat: 15}
	meals := []domain.Meal{
		meal(8, f(400), f(30), f(60), f(15)),
		meal(3, f(400), f(30), f(60), f(15)),
		meal(5, f(400), f(30), f(60), f(15)),
	}

	for i := 0; i < 10; i++ {
		if got := SelectFallback(meals, goal); got != 3 {
			t.Fatalf("expected meal 3 on tie, got %d", got)
		}
	}
}

func randomMeals(rng *rand.Rand) []domain.Meal {
	n := rng.Intn(8) + 1
	meals := make([]domain.Meal, n)
	maybe := func(limit int) *float64 {
		if rng.Intn(4) == 0 {
			return nil
		}
		return f(float64(rng.Intn(limit)))
	}
	for i := range meals {
		meals[i] = meal(int64(rng.Intn(50)+1), maybe(1500), maybe(80), maybe(200), maybe(60))
	}
	return meals
}

func TestSelectFallbackProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		meals := randomMeals(rng)
		var goal *domain.NutritionGoal
		if rng.Intn(2) == 0 {
			goal = &domain.NutritionGoal{
				Calories:      float64(rng.Intn(1500)),
				Protein:       float64(rng.Intn(80)),
				Carbohydrates: float64(rng.Intn(200)),
				Fat:           float64(rng.Intn(60)),
			}
		}

		got := SelectFallback(meals, goal)

		member := false
		for _, m := range meals {
			if m.ID == got {
				member = true
				break
			}
		}
		if !member {
			t.Fatalf("iteration %d: %d is not a candidate", i, got)
		}

		// reversing the input must not change the answer
		reversed := make([]domain.Meal, len(meals))
		for j, m := range meals {
			reversed[len(meals)-1-j] = m
		}
		if again := SelectFallback(reversed, goal); again != got {
			t.Fatalf("iteration %d: order changed result %d -> %d", i, got, again)
		}
	}
}

func TestSumNutrition(t *testing.T) {
	meals := []domain.Meal{
		meal(1, f(100), f(10), f(20), f(5)),
		meal(2, f(200), f(15), f(10), f(2)),
		meal(3, nil, f(5), nil, f(1)),
	}

	got := SumNutrition(meals)
	want := domain.NutritionTotals{Calories: 300, Proteins: 30, Carbohydrates: 30, Fats: 8}
	if got != want {
		t.Errorf("SumNutrition = %+v, want %+v", got, want)
	}
}
