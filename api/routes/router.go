package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcastillo/storefront-backend/api/controllers"
	"github.com/rcastillo/storefront-backend/api/middleware"
	"github.com/rcastillo/storefront-backend/pkg/auth/session"
	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/logger"
	"github.com/rcastillo/storefront-backend/pkg/metrics"
	redisclient "github.com/rcastillo/storefront-backend/pkg/redis"
)

const checkoutIdempotencyTTL = 24 * time.Hour

// Deps bundles everything the router needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry
	Sessions session.AccessSessionChecker
	Redis    *redisclient.Client

	Auth       *controllers.AuthController
	Products   *controllers.ProductsController
	Categories *controllers.CategoriesController
	Cart       *controllers.CartController
	Checkout   *controllers.CheckoutController
	Orders     *controllers.OrdersController
	Health     *controllers.HealthController
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	requireAuth := middleware.Auth(deps.Logger, deps.Config.JWT, deps.Sessions)
	requireStaff := middleware.RequireStaff(deps.Logger)
	rateCfg := deps.Config.AuthRateLimit

	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitByIP(deps.Logger, deps.Redis, "auth:register", rateCfg.RegisterIPLimit, rateCfg.RegisterWindow)).
				Post("/register", deps.Auth.Register)
			r.With(middleware.RateLimitByIP(deps.Logger, deps.Redis, "auth:login", rateCfg.LoginIPLimit, rateCfg.LoginWindow)).
				Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.With(requireAuth).Post("/logout", deps.Auth.Logout)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Products.List)
			r.Get("/{productID}", deps.Products.Get)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", deps.Categories.List)
			r.Get("/{categoryID}", deps.Categories.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", deps.Cart.Get)
				r.Post("/items", deps.Cart.AddItem)
				r.Delete("/items/{productID}", deps.Cart.RemoveItem)
				r.Delete("/", deps.Cart.Clear)
			})

			r.With(middleware.Idempotency(deps.Logger, deps.Redis, "checkout", checkoutIdempotencyTTL)).
				Post("/checkout", deps.Checkout.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", deps.Orders.ListMine)
				r.Get("/{orderID}", deps.Orders.Get)
				r.Post("/{orderID}/cancel", deps.Orders.Cancel)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireStaff)

			r.Post("/products", deps.Products.Create)
			r.Patch("/products/{productID}", deps.Products.Update)
			r.Delete("/products/{productID}", deps.Products.Delete)

			r.Post("/categories", deps.Categories.Create)

			r.Post("/orders/{orderID}/status", deps.Orders.UpdateStatus)
		})
	})

	return r
}
