package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/rcastillo/storefront-backend/api/responses"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes.
type HealthController struct {
	db    pinger
	redis pinger
	logg  *logger.Logger
}

func NewHealthController(db, redis pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, logg: logg}
}

// Live reports process liveness only.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks every backing dependency and aggregates the failures.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := map[string]string{"database": "ok", "redis": "ok"}

	var combined error
	if c.db != nil {
		if err := c.db.Ping(ctx); err != nil {
			status["database"] = "unavailable"
			combined = multierr.Append(combined, err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx); err != nil {
			status["redis"] = "unavailable"
			combined = multierr.Append(combined, err)
		}
	}

	if combined != nil {
		responses.WriteError(r.Context(), w, c.logg,
			pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "service not ready").WithDetails(status))
		return
	}

	responses.WriteSuccess(w, http.StatusOK, status)
}
