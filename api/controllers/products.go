package controllers

import (
	"net/http"
	"strings"

	"github.com/rcastillo/storefront-backend/api/middleware"
	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/api/validators"
	"github.com/rcastillo/storefront-backend/internal/catalog"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// ProductsController exposes public catalog reads and staff-only writes.
type ProductsController struct {
	service catalog.Service
	logg    *logger.Logger
}

func NewProductsController(service catalog.Service, logg *logger.Logger) *ProductsController {
	return &ProductsController{service: service, logg: logg}
}

func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	page, err := validators.PaginationFromQuery(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}
	categoryID, err := validators.OptionalUUIDQuery(r, "categoryId")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	filter := catalog.ProductFilter{
		CategoryID:   categoryID,
		Availability: strings.TrimSpace(r.URL.Query().Get("availability")),
		Search:       strings.TrimSpace(r.URL.Query().Get("q")),
		Page:         page,
	}

	result, err := c.service.ListProducts(r.Context(), filter)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, result)
}

func (c *ProductsController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	product, err := c.service.GetProduct(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, product)
}

func (c *ProductsController) Create(w http.ResponseWriter, r *http.Request) {
	input, err := validators.DecodeJSONBody[catalog.CreateProductInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.logg,
			pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	product, err := c.service.CreateProduct(r.Context(), userID, *input)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusCreated, product)
}

func (c *ProductsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	input, err := validators.DecodeJSONBody[catalog.UpdateProductInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	product, err := c.service.UpdateProduct(r.Context(), id, *input)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, product)
}

func (c *ProductsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := validators.UUIDParam(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	if err := c.service.DeleteProduct(r.Context(), id); err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
