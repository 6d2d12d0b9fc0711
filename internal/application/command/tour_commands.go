package command

import (
	"tour-service/internal/application/common"
	"tour-service/internal/domain/entities"
)

type CreateTourCommand struct {
	entities.TourSpec
}

type UpdateTourCommand struct {
	entities.TourPatch
}

type TourCommandResult struct {
	Result *common.TourResult `json:"result"`
}
