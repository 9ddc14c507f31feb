package service

import (
	"encoding/json"
	"fmt"

	"github.com/actuallystonmai/canteen-recommendation/internal/domain"
	"github.com/actuallystonmai/canteen-recommendation/internal/model"
)

const recommendSystemPrompt = `You are a canteen nutrition assistant.
From the candidate meals, choose the single meal that best fits the user's nutrition goal.
When no goal is given, choose the most balanced meal.
Reply with exactly one integer: the id of the chosen meal. Do not add any explanation.`

const totalsSystemPrompt = `You are a nutrition expert estimating the nutrition of a canteen menu.
Estimate the combined nutrition of all listed meals from their names.
Respond with ONLY a JSON object in this exact format:
{"calories": number, "proteins": number, "carbohydrates": number, "fats": number}
Calories are kcal, the other fields are grams. No additional text.`

const assessSystemPrompt = `You are a nutrition expert assessing how healthy a canteen menu is.
Use the nutrition values provided for each meal.
Respond with ONLY a JSON object in this exact format:
{"menuId": number, "reasoning": "one or two sentences"}
menuId must be the id of the menu you were given. No additional text.`

type goalPayload struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
}

type recommendPayload struct {
	Meals []domain.Meal `json:"meals"`
	Goal  *goalPayload  `json:"goal,omitempty"`
}

type mealRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type totalsPayload struct {
	MenuID int64     `json:"menuId"`
	Name   string    `json:"name"`
	Meals  []mealRef `json:"meals"`
}

type assessPayload struct {
	MenuID int64         `json:"menuId"`
	Name   string        `json:"name"`
	Meals  []domain.Meal `json:"meals"`
}

func recommendationPrompt(meals []domain.Meal, goal *domain.NutritionGoal) ([]model.Message, error) {
	payload := recommendPayload{Meals: meals}
	if goal != nil {
		payload.Goal = &goalPayload{
			Calories:      goal.Calories,
			Protein:       goal.Protein,
			Carbohydrates: goal.Carbohydrates,
			Fat:           goal.Fat,
		}
	}
	return chat(recommendSystemPrompt, "Candidate meals and goal:", payload)
}

// totalsPrompt sends meal names only: the model has to estimate the
// numbers instead of adding up ones it was given.
func totalsPrompt(menu *domain.Menu) ([]model.Message, error) {
	refs := make([]mealRef, len(menu.Meals))
	for i, m := range menu.Meals {
		refs[i] = mealRef{ID: m.ID, Name: m.Name}
	}
	return chat(totalsSystemPrompt, "Menu:", totalsPayload{MenuID: menu.ID, Name: menu.Name, Meals: refs})
}

func assessmentPrompt(menu *domain.Menu) ([]model.Message, error) {
	return chat(assessSystemPrompt, "Menu:", assessPayload{MenuID: menu.ID, Name: menu.Name, Meals: menu.Meals})
}

func chat(system, intro string, payload any) ([]model.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: intro + "\n" + string(body)},
	}, nil
}
