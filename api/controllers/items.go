package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/0xweirdlabs/fastapi.prod.starter/api/middleware"
	"github.com/0xweirdlabs/fastapi.prod.starter/api/responses"
	"github.com/0xweirdlabs/fastapi.prod.starter/api/validators"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/identity"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/items"
	pkgerrors "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/pagination"
)

type itemsService interface {
	Create(ctx context.Context, ident *identity.Identity, dto items.CreateItemDTO) (*items.ItemDTO, error)
	List(ctx context.Context, ident *identity.Identity, page pagination.Params) (*items.ItemListDTO, error)
	Get(ctx context.Context, ident *identity.Identity, id uuid.UUID) (*items.ItemDTO, error)
	Update(ctx context.Context, ident *identity.Identity, id uuid.UUID, dto items.UpdateItemDTO) (*items.ItemDTO, error)
	Delete(ctx context.Context, ident *identity.Identity, id uuid.UUID) error
}

func ItemsList(svc itemsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, middleware.IdentityFromContext(ctx), page)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ItemsCreate(svc itemsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var dto items.CreateItemDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Create(ctx, middleware.IdentityFromContext(ctx), dto)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemsGet(svc itemsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := itemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Get(ctx, middleware.IdentityFromContext(ctx), id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemsUpdate(svc itemsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := itemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var dto items.UpdateItemDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Update(ctx, middleware.IdentityFromContext(ctx), id, dto)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemsDelete(svc itemsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := itemID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, middleware.IdentityFromContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Item deleted successfully"})
	}
}

func itemID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "itemId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id").
			WithDetails(map[string]string{"item_id": raw})
	}
	return id, nil
}
