package domain

import "time"

type Menu struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	ServedOn time.Time `json:"served_on"`
	Meals    []Meal    `json:"meals"`
}
