package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
)

// ItemDTO is the transport shape of an item.
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemListDTO wraps a page of items with the unpaginated total.
type ItemListDTO struct {
	Data  []ItemDTO `json:"data"`
	Count int64     `json:"count"`
}

// CreateItemDTO carries a new item's fields.
type CreateItemDTO struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
}

// UpdateItemDTO carries a partial update; nil fields are left untouched.
type UpdateItemDTO struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
}

func FromModel(item *models.Item) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		OwnerID:     item.OwnerID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func fromModels(records []models.Item) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *FromModel(&records[i]))
	}
	return dtos
}
