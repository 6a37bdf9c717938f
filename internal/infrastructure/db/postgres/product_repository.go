package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/greenlibrary/catalog/internal/core/domain"
)

const listProductsQuery = `SELECT p.id, p.name, p.description, p.link, p.image IS NOT NULL, p.user_id, u.fullname, p.created_at
	 FROM products p
	 JOIN users u ON u.id = p.user_id`

// ProductRepository implements ports.ProductRepository on PostgreSQL.
type ProductRepository struct {
	db      querier
	timeout time.Duration
}

func NewProductRepository(db querier, timeout time.Duration) *ProductRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ProductRepository{db: db, timeout: timeout}
}

// Create inserts a product row. A nil Image is stored as NULL.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query :=
		`INSERT INTO products (name, description, link, image, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	created := *p
	created.HasImage = p.Image != nil
	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Link, p.Image, p.OwnerID).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case codeForeignKeyViolation, codeInvalidText:
			return nil, persistenceError("insert product: unknown owner", err)
		}
		return nil, persistenceError("insert product", err)
	}
	return &created, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, "list products", listProductsQuery+`
	 ORDER BY p.created_at DESC`)
}

func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Product, error) {
	return r.list(ctx, "list products by owner", listProductsQuery+`
	 WHERE p.user_id = $1
	 ORDER BY p.created_at DESC`, ownerID)
}

func (r *ProductRepository) Image(ctx context.Context, productID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var image []byte
	err := r.db.QueryRowContext(ctx, `SELECT image FROM products WHERE id = $1`, productID).Scan(&image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgErrorCode(err) == codeInvalidText {
			return nil, domain.ErrProductNotFound
		}
		return nil, persistenceError("read product image", err)
	}
	if image == nil {
		return nil, domain.ErrImageNotFound
	}
	return image, nil
}

func (r *ProductRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		if pgErrorCode(err) == codeInvalidText {
			return []*domain.Product{}, nil
		}
		return nil, persistenceError(op, err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Link, &p.HasImage, &p.OwnerID, &p.OwnerName, &p.CreatedAt); err != nil {
			return nil, persistenceError(op, err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError(op, err)
	}
	return products, nil
}
