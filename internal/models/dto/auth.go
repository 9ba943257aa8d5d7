package dto

type LoginRequest struct {
	Username string `json:"username" validate:"max=64"`
	Password string `json:"password" validate:"max=72"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Dashboard any    `json:"dashboard"`
}

type CreateAccountRequest struct {
	Username string `json:"username" validate:"max=64"`
	Password string `json:"password" validate:"max=72"`
}
