package http

import "github.com/jazbelrose/mylg-backend/internal/auth/service"

// Handler bundles the dependencies for auth and user HTTP endpoints.
type Handler struct {
	svc *service.AuthService
}

func New(svc *service.AuthService) *Handler {
	return &Handler{svc: svc}
}

type confirmReq struct {
	Email     string `json:"email"`
	Code      string `json:"code"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phoneNumber"`
	UserID    string `json:"userId"`
}

type updateProfileReq struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
	Thumbnail   *string `json:"thumbnail"`
	Company     *string `json:"company"`
	Occupation  *string `json:"occupation"`
	Version     int64   `json:"version"`
}

type setRoleReq struct {
	Role string `json:"role"`
}
