package command

// LoginUserCommand is used by both login and reactivate.
type LoginUserCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
