package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthUser struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Success     bool     `json:"success"`
	User        AuthUser `json:"user"`
	AccessToken string   `json:"access_token,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type SignupResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
