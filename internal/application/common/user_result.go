package common

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserResult struct {
	Id        primitive.ObjectID `json:"_id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Photo     string             `json:"photo,omitempty"`
	Role      string             `json:"role"`
	CreatedAt *time.Time         `json:"createdAt,omitempty"`
}

// UserRef is a populated user reference.
type UserRef struct {
	Id    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name,omitempty"`
	Photo string             `json:"photo,omitempty"`
	Email string             `json:"email,omitempty"`
	Role  string             `json:"role,omitempty"`
}
