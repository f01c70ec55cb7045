package controllers

import (
	"net/http"

	"github.com/rcastillo/storefront-backend/api/middleware"
	"github.com/rcastillo/storefront-backend/api/responses"
	"github.com/rcastillo/storefront-backend/api/validators"
	"github.com/rcastillo/storefront-backend/internal/auth"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

// AuthController exposes registration and the token lifecycle.
type AuthController struct {
	service auth.Service
	logg    *logger.Logger
}

func NewAuthController(service auth.Service, logg *logger.Logger) *AuthController {
	return &AuthController{service: service, logg: logg}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	input, err := validators.DecodeJSONBody[auth.RegisterInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	user, err := c.service.Register(r.Context(), *input)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusCreated, user)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	input, err := validators.DecodeJSONBody[auth.LoginInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	result, err := c.service.Login(r.Context(), *input)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, result)
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	input, err := validators.DecodeJSONBody[auth.RefreshInput](w, r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	pair, err := c.service.Refresh(r.Context(), *input)
	if err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, pair)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	accessID, ok := middleware.AccessIDFrom(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, c.logg,
			pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return
	}

	if err := c.service.Logout(r.Context(), accessID); err != nil {
		responses.WriteError(r.Context(), w, c.logg, err)
		return
	}

	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "logged out"})
}
