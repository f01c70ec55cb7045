package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rcastillo/storefront-backend/api/middleware"
	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/api/validators"
	"github.com/rcastillo/storefront-backend/internal/cart"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

type cartStore interface {
	Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*cart.View, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*cart.View, bool, error)
	Get(ctx context.Context, sessionID string) (*cart.View, error)
	Clear(ctx context.Context, sessionID string) error
}

// AddItemInput is the body for cart additions.
type AddItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// RemoveItemResult carries the updated cart plus whether the product was
// actually in it, so clients can tell a real removal from a no-op.
type RemoveItemResult struct {
	Removed bool       `json:"removed"`
	Cart    *cart.View `json:"cart"`
}

// CartController exposes the session cart. The cart is keyed by the caller's
// access session, so all endpoints require authentication.
type CartController struct {
	store cartStore
	logg  *logger.Logger
}

func NewCartController(store cartStore, logg *logger.Logger) *CartController {
	return &CartController{store: store, logg: logg}
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}

	view, err := c.store.Get(r.Context(), sessionID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, view)
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}

	input, err := validators.DecodeJSONBody[AddItemInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	view, err := c.store.Add(r.Context(), sessionID, input.ProductID, input.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, view)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}

	productID, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	view, removed, err := c.store.Remove(r.Context(), sessionID, productID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, RemoveItemResult{Removed: removed, Cart: view})
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}

	if err := c.store.Clear(r.Context(), sessionID); err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (c *CartController) unauthorized(w http.ResponseWriter, r *http.Request) {
	responses.WriteError(r.Context(), w, c.logg,
		pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
}
