package handler

import (
	"time"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// Request DTOs bind from urlencoded forms, multipart forms or JSON.

type registerRequest struct {
	Login     string `form:"login"     json:"login"     validate:"required,max=64"`
	Password  string `form:"password"  json:"password"  validate:"required,max=72"`
	Password2 string `form:"password2" json:"password2" validate:"required"`
	FullName  string `form:"fullname"  json:"fullname"  validate:"required,max=128"`
}

type loginRequest struct {
	Login    string `form:"login"    json:"login"    validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type productRequest struct {
	Name        string `form:"name"        json:"name"        validate:"required,max=200"`
	Link        string `form:"link"        json:"link"        validate:"required,max=2048,http_url"`
	Description string `form:"description" json:"description" validate:"max=4000"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	FullName  string    `json:"fullname"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type listResponse struct {
	User     *userResponse     `json:"user,omitempty"`
	Products []productResponse `json:"products"`
}

type profileResponse struct {
	User     *userResponse     `json:"user"`
	Products []productResponse `json:"products"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{ID: u.ID, Login: u.Login, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

func toProductResponse(p *domain.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Link:        p.Link,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		OwnerName:   p.OwnerName,
		CreatedAt:   p.CreatedAt,
	}
	if p.HasImage {
		resp.ImageURL = "/products/" + p.ID + "/image"
	}
	return resp
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}
