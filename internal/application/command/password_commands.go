package command

type ForgotPasswordCommand struct {
	Email string `json:"email" validate:"required,email"`
	// ResetURLBase is the scheme and host the reset link points at.
	ResetURLBase string `json:"-"`
}

type ResetPasswordCommand struct {
	Token           string `json:"-"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type UpdatePasswordCommand struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required"`
}
