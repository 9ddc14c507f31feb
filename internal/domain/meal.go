package domain

type Meal struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Calories      *float64 `json:"calories"`
	Protein       *float64 `json:"protein"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Fat           *float64 `json:"fat"`
}
