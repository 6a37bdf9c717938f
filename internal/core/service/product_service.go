package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenlibrary/catalog/internal/core/domain"
	"github.com/greenlibrary/catalog/internal/core/ports"
	"github.com/greenlibrary/catalog/internal/pkg/metrics"
)

type ProductService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewProductService(repo ports.ProductRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and stores a new product. It does not re-authenticate the
// owner; the owner foreign key is enforced by the repository. Each call
// creates a new row.
func (s *ProductService) Submit(ctx context.Context, in ports.SubmitProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	link := strings.TrimSpace(in.Link)

	switch {
	case in.OwnerID == "":
		return nil, domain.ErrUnauthenticated
	case name == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	case link == "":
		return nil, fmt.Errorf("%w: link is required", domain.ErrValidation)
	case !validLink(link):
		return nil, fmt.Errorf("%w: link must be an absolute http(s) URL", domain.ErrValidation)
	}

	var image []byte
	if len(in.Image) > 0 {
		image = in.Image
	}

	created, err := s.repo.Create(ctx, &domain.Product{
		Name:        name,
		Link:        link,
		Description: strings.TrimSpace(in.Description),
		Image:       image,
		HasImage:    image != nil,
		OwnerID:     in.OwnerID,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", in.OwnerID).Msg("failed to store product")
		return nil, err
	}

	metrics.ProductsSubmittedTotal.WithLabelValues(strconv.FormatBool(created.HasImage)).Inc()
	s.logger.Info().
		Str("product_id", created.ID).
		Str("owner_id", created.OwnerID).
		Int("image_bytes", len(image)).
		Msg("product submitted")
	return created, nil
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Product, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *ProductService) Image(ctx context.Context, productID string) ([]byte, error) {
	if productID == "" {
		return nil, domain.ErrProductNotFound
	}
	return s.repo.Image(ctx, productID)
}

func validLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
