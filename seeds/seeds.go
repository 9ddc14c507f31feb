package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	seedDays  = 14
	seedUsers = 20
)

type mealSeed struct {
	name                          string
	calories, protein, carbs, fat float64
}

var mealCatalog = []mealSeed{
	{"Oatmeal with Berries", 320, 10, 55, 7},
	{"Scrambled Eggs on Toast", 410, 22, 30, 21},
	{"Greek Yogurt Parfait", 280, 18, 35, 8},
	{"Pancakes with Syrup", 520, 9, 88, 14},
	{"Avocado Toast", 350, 9, 34, 20},
	{"Grilled Chicken Salad", 420, 38, 18, 21},
	{"Beef Lasagna", 680, 35, 55, 34},
	{"Vegetable Stir Fry", 380, 12, 52, 13},
	{"Salmon with Rice", 610, 40, 60, 22},
	{"Lentil Soup", 290, 18, 45, 4},
	{"Margherita Pizza", 740, 28, 90, 28},
	{"Chicken Curry", 590, 36, 48, 26},
	{"Tofu Buddha Bowl", 510, 22, 64, 18},
	{"Fish and Chips", 840, 32, 85, 42},
	{"Turkey Wrap", 460, 30, 42, 18},
	{"Caesar Salad", 330, 12, 14, 26},
	{"Spaghetti Bolognese", 650, 30, 78, 22},
	{"Mushroom Risotto", 560, 14, 80, 20},
	{"Bean Chili", 430, 24, 58, 10},
	{"Roast Vegetables", 210, 5, 30, 8},
	{"Fruit Cup", 90, 1, 22, 0},
	{"Chocolate Brownie", 380, 5, 48, 19},
	{"Tomato Soup", 160, 4, 24, 5},
	{"Garden Side Salad", 70, 2, 10, 3},
}

// Goal profiles as fractions of a per-user calorie target.
var (
	goalProfiles = []string{"maintain", "cut", "bulk"}
	goalWeights  = []float64{0.5, 0.3, 0.2}
)

func Setup(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	rng := rand.New(rand.NewSource(42))
	log = log.Named("seed")

	// Truncate existing data before insert
	log.Info("truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE menu_meals, menus, meals, nutrition_goals RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Info("inserting meals", zap.Int("count", len(mealCatalog)))
	if err := seedMeals(ctx, pool, rng); err != nil {
		return fmt.Errorf("seed meals: %w", err)
	}

	log.Info("inserting menus", zap.Int("days", seedDays))
	if err := seedMenus(ctx, pool, rng, time.Now().UTC().Truncate(24*time.Hour), seedDays); err != nil {
		return fmt.Errorf("seed menus: %w", err)
	}

	log.Info("inserting nutrition goals", zap.Int("users", seedUsers))
	if err := seedGoals(ctx, pool, rng, seedUsers); err != nil {
		return fmt.Errorf("seed goals: %w", err)
	}

	log.Info("seeding complete")
	return nil
}

// seedMeals leaves roughly one macro in ten unreported, like hand-entered
// canteen data.
func seedMeals(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) error {
	rows := []string{}
	args := []any{}

	for _, m := range mealCatalog {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, m.name,
			maybeMissing(rng, m.calories), maybeMissing(rng, m.protein),
			maybeMissing(rng, m.carbs), maybeMissing(rng, m.fat))
	}

	query := "INSERT INTO meals (name, calories, protein, carbohydrates, fat) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

// seedMenus creates breakfast, lunch and dinner for each day ending today.
// Meal ids follow mealCatalog order: the first five are breakfast dishes.
func seedMenus(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, today time.Time, days int) error {
	services := []struct {
		name       string
		first, end int // meal id range [first, end)
	}{
		{"Breakfast", 1, 6},
		{"Lunch", 6, len(mealCatalog) + 1},
		{"Dinner", 6, len(mealCatalog) + 1},
	}

	menuRows := []string{}
	menuArgs := []any{}
	for d := days - 1; d >= 0; d-- {
		day := today.AddDate(0, 0, -d)
		for _, s := range services {
			base := len(menuArgs)
			menuRows = append(menuRows, fmt.Sprintf("($%d, $%d)", base+1, base+2))
			menuArgs = append(menuArgs, s.name, day)
		}
	}
	if _, err := pool.Exec(ctx, "INSERT INTO menus (name, served_on) VALUES "+strings.Join(menuRows, ", "), menuArgs...); err != nil {
		return fmt.Errorf("insert menus: %w", err)
	}

	// menus were inserted in order, so ids are 1..days*len(services)
	linkRows := []string{}
	linkArgs := []any{}
	for i := range days * len(services) {
		s := services[i%len(services)]
		menuID := int64(i + 1)
		for pos, mealID := range pickMeals(rng, s.first, s.end, 3+rng.Intn(3)) {
			base := len(linkArgs)
			linkRows = append(linkRows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
			linkArgs = append(linkArgs, menuID, mealID, pos)
		}
	}
	if _, err := pool.Exec(ctx, "INSERT INTO menu_meals (menu_id, meal_id, position) VALUES "+strings.Join(linkRows, ", "), linkArgs...); err != nil {
		return fmt.Errorf("insert menu meals: %w", err)
	}
	return nil
}

func seedGoals(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, users int) error {
	rows := []string{}
	args := []any{}

	for userID := 1; userID <= users; userID++ {
		// some users never set a goal
		if rng.Float64() < 0.2 {
			continue
		}
		target := 1600 + float64(rng.Intn(9))*100
		for range 1 + rng.Intn(3) {
			calories := target * profileFactor(weightedChoice(rng, goalProfiles, goalWeights))
			setAt := time.Now().AddDate(0, 0, -rng.Intn(120))

			base := len(args)
			rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6))
			// 25% protein, 50% carbohydrate, 25% fat of a third of the daily target
			meal := calories / 3
			args = append(args, userID, round1(meal), round1(meal*0.25/4), round1(meal*0.50/4), round1(meal*0.25/9), setAt)
		}
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO nutrition_goals (user_id, calories, protein, carbohydrates, fat, date_set) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

// pickMeals draws n distinct ids from [first, end).
func pickMeals(rng *rand.Rand, first, end, n int) []int64 {
	perm := rng.Perm(end - first)
	n = min(n, len(perm))
	ids := make([]int64, n)
	for i := range n {
		ids[i] = int64(first + perm[i])
	}
	return ids
}

func maybeMissing(rng *rand.Rand, v float64) *float64 {
	if rng.Float64() < 0.1 {
		return nil
	}
	return &v
}

func profileFactor(profile string) float64 {
	switch profile {
	case "cut":
		return 0.8
	case "bulk":
		return 1.15
	default:
		return 1.0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
