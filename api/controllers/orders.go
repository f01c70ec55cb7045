package controllers

import (
	"net/http"

	"github.com/rcastillo/storefront-backend/api/middleware"
	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/api/validators"
	"github.com/rcastillo/storefront-backend/internal/orders"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// UpdateOrderStatusInput is the body for staff status transitions.
type UpdateOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// OrdersController exposes order history, cancellation, and staff status management.
type OrdersController struct {
	service orders.Service
	logg    *logger.Logger
}

func NewOrdersController(service orders.Service, logg *logger.Logger) *OrdersController {
	return &OrdersController{service: service, logg: logg}
}

func (c *OrdersController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}

	page, err := validators.PaginationFromQuery(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	result, err := c.service.ListMyOrders(r.Context(), userID, page)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, result)
}

func (c *OrdersController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}
	role, _ := middleware.RoleFrom(r.Context())

	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	order, err := c.service.GetOrder(r.Context(), orderID, userID, role)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		c.unauthorized(w, r)
		return
	}

	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	order, err := c.service.Cancel(r.Context(), orderID, userID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	input, err := validators.DecodeJSONBody[UpdateOrderStatusInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg,
			pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
		return
	}

	order, err := c.service.UpdateStatus(r.Context(), orderID, target)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, order)
}

func (c *OrdersController) unauthorized(w http.ResponseWriter, r *http.Request) {
	responses.WriteError(r.Context(), w, c.logg,
		pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
}
