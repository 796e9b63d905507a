package handler

import "github.com/possuite/backoffice/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ownerResponse struct {
	Token string        `json:"token,omitempty"`
	User  *domain.Owner `json:"user"`
}

type staffLoginResponse struct {
	Token string        `json:"token"`
	Staff *domain.Staff `json:"staff"`
}

type messageResponse struct {
	Message string `json:"message"`
}
