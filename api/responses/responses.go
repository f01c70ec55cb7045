package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
	"github.com/rcastillo/storefront-backend/pkg/types"
)

// WriteSuccess renders the standard {data: ...} envelope.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteError maps the error onto its HTTP status and public shape. Internal
// detail never leaks to the client; the full chain goes to the log instead.
func WriteError(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	if logg != nil {
		dump := pkgerrors.Dump(err)
		logCtx := logg.WithFields(ctx, map[string]any{
			"error_code": string(typed.Code()),
			"error_dump": dump,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(logCtx, "request failed", err)
		} else {
			logg.Warn(logCtx, "request rejected")
		}
	}

	apiErr := types.APIError{
		Code:    string(typed.Code()),
		Message: typed.Message(),
	}
	if apiErr.Message == "" || meta.HTTPStatus >= http.StatusInternalServerError {
		apiErr.Message = meta.PublicMessage
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: apiErr})
}
