package items

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xweirdlabs/fastapi.prod.starter/internal/identity"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/db/models"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/pagination"
)

type fakeItemStore struct {
	items map[uuid.UUID]*models.Item
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[uuid.UUID]*models.Item{}}
}

func (f *fakeItemStore) Create(_ context.Context, item *models.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemStore) FindByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	if item, ok := f.items[id]; ok {
		clone := *item
		return &clone, nil
	}
	return nil, errors.New(errors.CodeNotFound, "item not found")
}

func (f *fakeItemStore) List(_ context.Context, ownerID string, page pagination.Params) ([]models.Item, int64, error) {
	var matched []models.Item
	for _, item := range f.items {
		if ownerID == "" || item.OwnerID == ownerID {
			matched = append(matched, *item)
		}
	}
	total := int64(len(matched))
	if page.Skip >= len(matched) {
		return nil, total, nil
	}
	matched = matched[page.Skip:]
	if len(matched) > page.Limit {
		matched = matched[:page.Limit]
	}
	return matched, total, nil
}

func (f *fakeItemStore) Update(_ context.Context, item *models.Item) error {
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeItemStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return errors.New(errors.CodeNotFound, "item not found")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) seed(ownerID, title string) *models.Item {
	item := &models.Item{ID: uuid.New(), Title: title, OwnerID: ownerID}
	f.items[item.ID] = item
	return item
}

func owner(subject string) *identity.Identity {
	return &identity.Identity{Subject: subject, IsActive: true}
}

func superuser() *identity.Identity {
	return &identity.Identity{Subject: "admin-1", IsActive: true, IsSuperuser: true}
}

func TestCreateAssignsCallerAsOwner(t *testing.T) {
	store := newFakeItemStore()
	svc := NewService(store)

	dto, err := svc.Create(context.Background(), owner("user-1"), CreateItemDTO{Title: "first item"})

	require.NoError(t, err)
	assert.Equal(t, "user-1", dto.OwnerID)
	assert.NotEqual(t, uuid.Nil, dto.ID)
}

func TestCreateRejectsInactiveCaller(t *testing.T) {
	svc := NewService(newFakeItemStore())
	ident := &identity.Identity{Subject: "user-1", IsActive: false}

	_, err := svc.Create(context.Background(), ident, CreateItemDTO{Title: "nope"})

	assert.True(t, errors.IsCode(err, errors.CodeInactive))
}

func TestListScopesByOwner(t *testing.T) {
	store := newFakeItemStore()
	store.seed("user-1", "mine a")
	store.seed("user-1", "mine b")
	store.seed("user-2", "theirs")
	svc := NewService(store)

	page, err := svc.List(context.Background(), owner("user-1"), pagination.Params{})

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
	for _, item := range page.Data {
		assert.Equal(t, "user-1", item.OwnerID)
	}
}

func TestListSuperuserSeesAll(t *testing.T) {
	store := newFakeItemStore()
	store.seed("user-1", "a")
	store.seed("user-2", "b")
	svc := NewService(store)

	page, err := svc.List(context.Background(), superuser(), pagination.Params{})

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
}

func TestGetForeignItemLooksMissing(t *testing.T) {
	store := newFakeItemStore()
	foreign := store.seed("user-2", "theirs")
	svc := NewService(store)

	_, missingErr := svc.Get(context.Background(), owner("user-1"), uuid.New())
	_, foreignErr := svc.Get(context.Background(), owner("user-1"), foreign.ID)

	// Foreign and nonexistent must be indistinguishable.
	assert.True(t, errors.IsCode(missingErr, errors.CodeNotFound))
	assert.True(t, errors.IsCode(foreignErr, errors.CodeNotFound))
	assert.Equal(t, errors.As(missingErr).Message(), errors.As(foreignErr).Message())
}

func TestGetSuperuserReadsForeignItem(t *testing.T) {
	store := newFakeItemStore()
	foreign := store.seed("user-2", "theirs")
	svc := NewService(store)

	dto, err := svc.Get(context.Background(), superuser(), foreign.ID)

	require.NoError(t, err)
	assert.Equal(t, foreign.ID, dto.ID)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	store := newFakeItemStore()
	desc := "original description"
	item := store.seed("user-1", "original title")
	item.Description = &desc
	svc := NewService(store)

	newTitle := "updated title"
	dto, err := svc.Update(context.Background(), owner("user-1"), item.ID, UpdateItemDTO{Title: &newTitle})

	require.NoError(t, err)
	assert.Equal(t, "updated title", dto.Title)
	require.NotNil(t, dto.Description)
	assert.Equal(t, "original description", *dto.Description)
}

func TestUpdateForeignItemLooksMissing(t *testing.T) {
	store := newFakeItemStore()
	foreign := store.seed("user-2", "theirs")
	svc := NewService(store)

	newTitle := "hijacked"
	_, err := svc.Update(context.Background(), owner("user-1"), foreign.ID, UpdateItemDTO{Title: &newTitle})

	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestDeleteThenRedeleteIsNotFound(t *testing.T) {
	store := newFakeItemStore()
	item := store.seed("user-1", "short lived")
	svc := NewService(store)

	require.NoError(t, svc.Delete(context.Background(), owner("user-1"), item.ID))

	err := svc.Delete(context.Background(), owner("user-1"), item.ID)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestListPagination(t *testing.T) {
	store := newFakeItemStore()
	for i := 0; i < 5; i++ {
		store.seed("user-1", "item")
	}
	svc := NewService(store)

	page, err := svc.List(context.Background(), owner("user-1"), pagination.Params{Skip: 3, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Count)
	assert.Len(t, page.Data, 2)
}
