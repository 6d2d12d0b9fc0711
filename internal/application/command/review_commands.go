package command

import "tour-service/internal/application/common"

type CreateReviewCommand struct {
	Description string `json:"description" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
}

type UpdateReviewCommand struct {
	Description *string `json:"description,omitempty"`
	Rating      *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

type ReviewCommandResult struct {
	Result *common.ReviewResult `json:"result"`
}
