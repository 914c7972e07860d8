package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/shopcart/internal/domain/form"
)

// SaveResult is the outcome of an admin create or update.
type SaveResult struct {
	Product     *Product
	Corrections []form.Correction
}

// Service encapsulates catalog reads and admin product management.
type Service struct {
	repo  Repository
	newID func() string
}

// NewService creates a product Service backed by the given Repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		newID: func() string { return "p-" + uuid.NewString() },
	}
}

// List returns the catalog, optionally narrowed by a search term.
func (s *Service) List(ctx context.Context, query string) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return Filter(products, query), nil
}

// Get returns a single product by ID.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create normalizes and stores a new product under a freshly generated ID.
func (s *Service) Create(ctx context.Context, p Product) (*SaveResult, error) {
	p, corrections, err := prepare(p)
	if err != nil {
		return nil, err
	}
	p.ID = s.newID()

	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return &SaveResult{Product: &p, Corrections: corrections}, nil
}

// Update normalizes and replaces the product stored under id. Cart lines
// holding more than the new stock are clamped by the repository.
func (s *Service) Update(ctx context.Context, id string, p Product) (*SaveResult, error) {
	p, corrections, err := prepare(p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	if err := s.repo.Update(ctx, &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update product")
	}
	return &SaveResult{Product: &p, Corrections: corrections}, nil
}

// Delete removes a product. Cart lines referencing it are removed with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "delete product")
	}
	return nil
}

func prepare(p Product) (Product, []form.Correction, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, nil, ErrNameRequired
	}
	p, corrections := Normalize(p)
	return p, corrections, nil
}
