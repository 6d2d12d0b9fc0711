package command

type CreateUserCommand struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=25"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// TokenCommandResult carries either a fresh token or a message telling
// the client what to do instead.
type TokenCommandResult struct {
	Token string `json:"token,omitempty"`
	Msg   string `json:"msg,omitempty"`
}

type MessageCommandResult struct {
	Msg string `json:"msg"`
}
