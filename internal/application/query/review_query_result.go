package query

import "tour-service/internal/application/common"

type ReviewQueryListResult struct {
	Result []*common.ReviewResult `json:"result"`
}
