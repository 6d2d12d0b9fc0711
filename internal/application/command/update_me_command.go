package command

// UpdateMeCommand carries profile changes. Password fields are bound only
// so they can be rejected.
type UpdateMeCommand struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Password        *string `json:"password,omitempty"`
	PasswordConfirm *string `json:"passwordConfirm,omitempty"`
}
