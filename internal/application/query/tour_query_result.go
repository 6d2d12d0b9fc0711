package query

import (
	"tour-service/internal/application/common"
	"tour-service/internal/domain/entities"
)

type TourQueryResult struct {
	Result *common.TourDetailResult `json:"result"`
}

type TourQueryListResult struct {
	Result []*common.TourResult `json:"result"`
}

type TourStatsQueryResult struct {
	Result []entities.DifficultyStats `json:"result"`
}

type MonthlyPlanQueryResult struct {
	Result []entities.MonthPlan `json:"result"`
}

type TourDistancesQueryResult struct {
	Result []entities.TourDistance `json:"result"`
}
