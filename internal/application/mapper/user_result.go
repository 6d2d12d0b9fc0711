package mapper

import (
	"tour-service/internal/application/common"
	"tour-service/internal/domain/entities"
)

func NewUserResultFromEntity(user *entities.User) *common.UserResult {
	result := &common.UserResult{
		Id:    user.Id,
		Name:  user.Name,
		Email: user.Email,
		Photo: user.Photo,
		Role:  string(user.Role),
	}
	if !user.CreatedAt.IsZero() {
		createdAt := user.CreatedAt
		result.CreatedAt = &createdAt
	}
	return result
}

func NewUserResultsFromEntities(users []*entities.User) []*common.UserResult {
	results := make([]*common.UserResult, 0, len(users))
	for _, u := range users {
		results = append(results, NewUserResultFromEntity(u))
	}
	return results
}

func NewUserRefFromSummary(s *entities.UserSummary) *common.UserRef {
	return &common.UserRef{
		Id:    s.Id,
		Name:  s.Name,
		Photo: s.Photo,
		Email: s.Email,
		Role:  string(s.Role),
	}
}
