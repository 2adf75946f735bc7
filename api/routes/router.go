package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0xweirdlabs/fastapi.prod.starter/api/controllers"
	"github.com/0xweirdlabs/fastapi.prod.starter/api/middleware"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/auth"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/identity"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/items"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/metrics"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/redis"
)

// Dependencies carries everything the router wires into handlers. Optional
// fields may be nil; the affected surfaces degrade rather than fail.
type Dependencies struct {
	Resolver     *identity.Resolver
	AuthService  *auth.Service
	ItemsService *items.Service
	DBPinger     controllers.Pinger
	Redis        *redis.Client
	HTTPMetrics  *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	var limiter middleware.RateLimiterStore
	if deps.Redis != nil {
		limiter = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	readiness := map[string]controllers.Pinger{}
	if deps.DBPinger != nil {
		readiness["database"] = deps.DBPinger
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health())
		r.Get("/ready", controllers.HealthReady(logg, readiness))
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, limiter, logg)).
			Post("/signup", controllers.AuthSignup(deps.AuthService, logg))
		r.Get("/login/google", controllers.AuthLoginGoogle(deps.AuthService, logg))
		r.Get("/callback", controllers.AuthCallback(deps.AuthService, cfg.Frontend, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Resolver, logg))
			r.Get("/me", controllers.AuthMe(logg))
		})
	})

	r.Route("/items", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Resolver, logg))
		r.Get("/", controllers.ItemsList(deps.ItemsService, logg))
		r.Post("/", controllers.ItemsCreate(deps.ItemsService, logg))
		r.Get("/{itemId}", controllers.ItemsGet(deps.ItemsService, logg))
		r.Put("/{itemId}", controllers.ItemsUpdate(deps.ItemsService, logg))
		r.Delete("/{itemId}", controllers.ItemsDelete(deps.ItemsService, logg))
	})

	return r
}
