package domain

type NutritionTotals struct {
	Calories      float64 `json:"calories"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

type NutritionAssessment struct {
	MenuID    int64  `json:"menuId"`
	Reasoning string `json:"reasoning"`
}
