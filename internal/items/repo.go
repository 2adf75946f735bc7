package items

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/metrics"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/pagination"
)

const table = "items"

// Repository persists items. The owner_id column holds opaque subject ids,
// not local user FKs; delegated subjects are never stored in the users table.
type Repository struct {
	db *gorm.DB
	m  *metrics.DBMetrics
}

// NewRepository constructs an items repo. The metrics handle may be nil.
func NewRepository(db *gorm.DB, m *metrics.DBMetrics) *Repository {
	return &Repository{db: db, m: m}
}

func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	err := r.m.Track("insert", table, func() error {
		return r.db.WithContext(ctx).Create(item).Error
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "creating item")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.m.Track("select", table, func() error {
		return r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	})
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "item not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up item")
	}
	return &item, nil
}

// List returns a page of items plus the unpaginated total. An empty ownerID
// lists every item; callers gate that on superuser privileges.
func (r *Repository) List(ctx context.Context, ownerID string, page pagination.Params) ([]models.Item, int64, error) {
	var (
		records []models.Item
		total   int64
	)
	err := r.m.Track("select", table, func() error {
		query := r.db.WithContext(ctx).Model(&models.Item{})
		if ownerID != "" {
			query = query.Where("owner_id = ?", ownerID)
		}
		if err := query.Count(&total).Error; err != nil {
			return err
		}
		return query.
			Order("created_at DESC").
			Offset(page.Skip).
			Limit(page.Limit).
			Find(&records).Error
	})
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "listing items")
	}
	return records, total, nil
}

func (r *Repository) Update(ctx context.Context, item *models.Item) error {
	err := r.m.Track("update", table, func() error {
		return r.db.WithContext(ctx).Save(item).Error
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "updating item")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.m.Track("delete", table, func() error {
		result := r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting item")
	}
	if affected == 0 {
		return errors.New(errors.CodeNotFound, "item not found")
	}
	return nil
}
