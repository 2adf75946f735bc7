package users

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const table = "users"

// Repository exposes credential-store persistence operations.
type Repository struct {
	db *gorm.DB
	m  *metrics.DBMetrics
}

// NewRepository constructs a users repo bound to the provided GORM DB. The
// metrics handle may be nil.
func NewRepository(db *gorm.DB, m *metrics.DBMetrics) *Repository {
	return &Repository{db: db, m: m}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	err := r.m.Track("insert", table, func() error {
		return r.db.WithContext(ctx).Create(user).Error
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, errors.New(errors.CodeConflict, "the user with this email already exists in the system")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "creating user")
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.m.Track("select", table, func() error {
		return r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	})
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up user by email")
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.m.Track("select", table, func() error {
		return r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	})
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up user by id")
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.m.Track("update", table, func() error {
		return r.db.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			UpdateColumn("last_login_at", at).Error
	})
}
