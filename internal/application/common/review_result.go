package common

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TourRef struct {
	Id   primitive.ObjectID `json:"_id"`
	Name string             `json:"name,omitempty"`
}

type ReviewResult struct {
	Id          primitive.ObjectID `json:"_id"`
	Description string             `json:"description"`
	Rating      int                `json:"rating"`
	CreatedAt   time.Time          `json:"createdAt"`
	User        *UserRef           `json:"user"`
	Tour        *TourRef           `json:"tour"`
}
