package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
)

const mealColumns = `m.id, m.name, m.calories, m.protein, m.carbohydrates, m.fat`

// Get single menu with its meals
func (r *Repository) GetMenuByID(ctx context.Context, menuID int64) (*domain.Menu, error) {
	menu := &domain.Menu{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, served_on FROM menus WHERE id = $1`,
		menuID,
	).Scan(&menu.ID, &menu.Name, &menu.ServedOn)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMenuNotFound
		}
		return nil, fmt.Errorf("query menu id=%d: %w", menuID, err)
	}

	meals, err := r.getMealsForMenus(ctx, []int64{menuID})
	if err != nil {
		return nil, err
	}
	menu.Meals = meals[menuID]
	return menu, nil
}

// Get all menus served on a date, meals included
func (r *Repository) GetMenusByDate(ctx context.Context, date time.Time) ([]domain.Menu, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, served_on FROM menus WHERE served_on = $1 ORDER BY id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query menus for %s: %w", date.Format(time.DateOnly), err)
	}
	defer rows.Close()

	var menus []domain.Menu
	for rows.Next() {
		var m domain.Menu
		if err := rows.Scan(&m.ID, &m.Name, &m.ServedOn); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menus: %w", err)
	}
	if len(menus) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(menus))
	for i, m := range menus {
		ids[i] = m.ID
	}
	meals, err := r.getMealsForMenus(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range menus {
		menus[i].Meals = meals[menus[i].ID]
	}
	return menus, nil
}

func (r *Repository) getMealsForMenus(ctx context.Context, menuIDs []int64) (map[int64][]domain.Meal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT mm.menu_id, `+mealColumns+`
		FROM menu_meals mm
		JOIN meals m ON m.id = mm.meal_id
		WHERE mm.menu_id = ANY($1)
		ORDER BY mm.menu_id, mm.position, m.id`,
		menuIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query meals for menus %v: %w", menuIDs, err)
	}
	defer rows.Close()

	meals := make(map[int64][]domain.Meal, len(menuIDs))
	for rows.Next() {
		var menuID int64
		var m domain.Meal
		if err := rows.Scan(&menuID, &m.ID, &m.Name, &m.Calories, &m.Protein, &m.Carbohydrates, &m.Fat); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals[menuID] = append(meals[menuID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return meals, nil
}
