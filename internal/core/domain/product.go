package domain

import "time"

// Product is a catalog entry submitted by a user.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Link        string `json:"link"`
	Description string `json:"description"`
	// Image is only populated on write and on explicit image reads; listings
	// carry HasImage instead of the bytes.
	Image     []byte    `json:"-"`
	HasImage  bool      `json:"has_image"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
