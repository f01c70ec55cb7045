package controllers

import (
	"net/http"

	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/api/validators"
	"github.com/rcastillo/storefront-backend/internal/catalog"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// CategoriesController exposes category reads and staff-only creation.
type CategoriesController struct {
	service catalog.Service
	logg    *logger.Logger
}

func NewCategoriesController(service catalog.Service, logg *logger.Logger) *CategoriesController {
	return &CategoriesController{service: service, logg: logg}
}

func (c *CategoriesController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.ListCategories(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, categories)
}

func (c *CategoriesController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := validators.UUIDParam(r, "categoryID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	category, err := c.service.GetCategory(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, category)
}

func (c *CategoriesController) Create(w http.ResponseWriter, r *http.Request) {
	input, err := validators.DecodeJSONBody[catalog.CreateCategoryInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	category, err := c.service.CreateCategory(r.Context(), *input)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusCreated, category)
}
