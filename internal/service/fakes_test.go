package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
	"github.com/actuallystonmai/canteen-recommendation/internal/metrics"
	"github.com/actuallystonmai/canteen-recommendation/internal/model"
)

func f(v float64) *float64 { return &v }

type fakeMenuRepo struct {
	menus  map[int64]*domain.Menu
	byDate map[string][]domain.Menu
	err    error
}

func (r *fakeMenuRepo) GetMenuByID(_ context.Context, menuID int64) (*domain.Menu, error) {
	if r.err != nil {
		return nil, r.err
	}
	menu, ok := r.menus[menuID]
	if !ok {
		return nil, domain.ErrMenuNotFound
	}
	return menu, nil
}

func (r *fakeMenuRepo) GetMenusByDate(_ context.Context, date time.Time) ([]domain.Menu, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.byDate[date.Format(time.DateOnly)], nil
}

type fakeGoalRepo struct {
	goals map[int64][]domain.NutritionGoal
	err   error
}

func (r *fakeGoalRepo) GetGoalsByUser(_ context.Context, userID int64) ([]domain.NutritionGoal, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.goals[userID], nil
}

// fakeCompleter returns reply/err, or delegates to fn when set.
type fakeCompleter struct {
	mu       sync.Mutex
	reply    string
	err      error
	fn       func(ctx context.Context) (string, error)
	calls    int
	messages []model.Message
}

func (c *fakeCompleter) Complete(ctx context.Context, messages []model.Message) (string, error) {
	c.mu.Lock()
	c.calls++
	c.messages = messages
	c.mu.Unlock()
	if c.fn != nil {
		return c.fn(ctx)
	}
	return c.reply, c.err
}

// payload decodes the JSON the engine sent in the user message.
func (c *fakeCompleter) payload(t *testing.T, v any) {
	t.Helper()
	if len(c.messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(c.messages))
	}
	parts := strings.SplitN(c.messages[1].Content, "\n", 2)
	if len(parts) != 2 {
		t.Fatalf("user message has no payload: %q", c.messages[1].Content)
	}
	if err := json.Unmarshal([]byte(parts[1]), v); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func lunchMenu() *domain.Menu {
	return &domain.Menu{
		ID:   5,
		Name: "Lunch",
		Meals: []domain.Meal{
			{ID: 1, Name: "Pasta", Calories: f(100), Protein: f(10), Carbohydrates: f(20), Fat: f(5)},
			{ID: 2, Name: "Soup", Calories: f(200), Protein: f(15), Carbohydrates: f(10), Fat: f(2)},
			{ID: 3, Name: "Salad", Protein: f(5), Fat: f(1)},
		},
	}
}

var nop = zap.NewNop()
