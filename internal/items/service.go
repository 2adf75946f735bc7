package items

import (
	"context"

	"github.com/google/uuid"

	"github.com/0xweirdlabs/fastapi.prod.starter/internal/identity"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/pagination"
)

// itemStore is the slice of the repository the service needs.
type itemStore interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, ownerID string, page pagination.Params) ([]models.Item, int64, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service enforces ownership on item access. Items the caller does not own
// answer exactly like items that do not exist.
type Service struct {
	repo itemStore
}

func NewService(repo itemStore) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, ident *identity.Identity, dto CreateItemDTO) (*ItemDTO, error) {
	if err := identity.RequireActive(ident); err != nil {
		return nil, err
	}
	item := &models.Item{
		Title:       dto.Title,
		Description: dto.Description,
		OwnerID:     ident.Subject,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

func (s *Service) List(ctx context.Context, ident *identity.Identity, page pagination.Params) (*ItemListDTO, error) {
	if err := identity.RequireActive(ident); err != nil {
		return nil, err
	}
	page = page.Normalize()

	ownerID := ident.Subject
	if ident.IsSuperuser {
		ownerID = ""
	}
	records, total, err := s.repo.List(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	return &ItemListDTO{Data: fromModels(records), Count: total}, nil
}

func (s *Service) Get(ctx context.Context, ident *identity.Identity, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.authorize(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

func (s *Service) Update(ctx context.Context, ident *identity.Identity, id uuid.UUID, dto UpdateItemDTO) (*ItemDTO, error) {
	item, err := s.authorize(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	if dto.Title != nil {
		item.Title = *dto.Title
	}
	if dto.Description != nil {
		item.Description = dto.Description
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

func (s *Service) Delete(ctx context.Context, ident *identity.Identity, id uuid.UUID) error {
	if _, err := s.authorize(ctx, ident, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// authorize loads the item and verifies the caller may touch it. A foreign
// item is reported as missing so callers cannot probe other owners' ids.
func (s *Service) authorize(ctx context.Context, ident *identity.Identity, id uuid.UUID) (*models.Item, error) {
	if err := identity.RequireActive(ident); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ident.IsSuperuser && item.OwnerID != ident.Subject {
		return nil, errors.New(errors.CodeNotFound, "item not found")
	}
	return item, nil
}
