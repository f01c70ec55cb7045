package controllers

import (
	"net/http"

	"github.com/rcastillo/storefront-backend/api/middleware"
	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/internal/checkout"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// CheckoutController converts the caller's cart into an order.
type CheckoutController struct {
	service checkout.Service
	logg    *logger.Logger
}

func NewCheckoutController(service checkout.Service, logg *logger.Logger) *CheckoutController {
	return &CheckoutController{service: service, logg: logg}
}

func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.logg,
			pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}
	sessionID, ok := middleware.SessionIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.logg,
			pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	order, err := c.service.Convert(r.Context(), userID, sessionID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusCreated, order)
}
