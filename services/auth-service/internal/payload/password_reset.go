package payload

type ForgotPasswordRequest struct {
	EmailID string `json:"emailId" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}
