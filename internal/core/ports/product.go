package ports

import (
	"context"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create inserts a new row; it never deduplicates.
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	// List returns every product, newest first, without image bytes.
	List(ctx context.Context) ([]*domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Product, error)
	// Image returns domain.ErrProductNotFound or domain.ErrImageNotFound.
	Image(ctx context.Context, productID string) ([]byte, error)
}

// SubmitProductInput carries a product submission. Image is nil when the
// form had no file.
type SubmitProductInput struct {
	Name        string
	Link        string
	Description string
	Image       []byte
	OwnerID     string
}

type ProductService interface {
	Submit(ctx context.Context, input SubmitProductInput) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Product, error)
	Image(ctx context.Context, productID string) ([]byte, error)
}
