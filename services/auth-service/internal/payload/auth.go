package payload

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	ExpireAt string `json:"expireAt"`
	Message  string `json:"message"`
}

type RegisterRequest struct {
	Email       string `json:"email"       validate:"required,email,max=254"`
	Password    string `json:"password"    validate:"required,min=8,max=128"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Phone       string `json:"phone"       validate:"omitempty,max=32"`
}
