package handler

// RecommendMenusRequest is the body of POST /recommendation/menus.
type RecommendMenusRequest struct {
	MenuIDs []int64 `json:"menuIds" validate:"required,min=1,max=50,dive,gt=0"`
	UserID  *int64  `json:"userId" validate:"omitempty,gt=0"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
