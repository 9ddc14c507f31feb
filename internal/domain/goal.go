package domain

import "time"

// NutritionGoal is a user's daily macro target. The goal with the latest
// DateSet is the user's active one.
type NutritionGoal struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`
	Carbohydrates float64   `json:"carbohydrates"`
	Fat           float64   `json:"fat"`
	DateSet       time.Time `json:"date_set"`
}
