package http

import (
	"log/slog"

	"github.com/geocoder89/bistro/internal/auth"
	"github.com/geocoder89/bistro/internal/config"
	"github.com/geocoder89/bistro/internal/http/handlers"
	"github.com/geocoder89/bistro/internal/http/middlewares"
	"github.com/geocoder89/bistro/internal/observability"
	"github.com/geocoder89/bistro/internal/repo"
	"github.com/geocoder89/bistro/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Access selects the middleware chain that guards a route.
type Access int

const (
	AccessPublic Access = iota
	// AccessAuth needs a valid bearer token.
	AccessAuth
	// AccessAdmin needs a valid token whose email belongs to an admin user.
	AccessAdmin
	// AccessSelf needs a valid token whose email equals the :email parameter.
	AccessSelf
)

type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler gin.HandlerFunc
}

type Deps struct {
	Env          string
	ServiceName  string
	Store        store.Database
	Tokens       *auth.Manager
	Prom         *observability.Prom
	Gatherer     prometheus.Gatherer
	CORSOrigins  []string
	MaxBodyBytes int64
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if deps.Env != config.EnvDev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(otelgin.Middleware(deps.ServiceName))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.CORSOrigins))
	if deps.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(deps.MaxBodyBytes))
	}

	// infra
	health := handlers.NewHealthHandler(deps.Store.Ping)
	r.GET("/", health.Root)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", observability.MetricsHandler(gatherer))

	// wire up repositories
	users := repo.NewUserRepo(deps.Store)
	authMw := middlewares.NewAuthMiddleware(deps.Tokens, users, deps.Prom)

	for _, rt := range Routes(deps.Store, deps.Tokens) {
		chain := append(guard(authMw, rt.Access), rt.Handler)
		r.Handle(rt.Method, rt.Path, chain...)
	}

	return r
}

// Routes is the resource route table.
func Routes(db store.Database, tokens *auth.Manager) []Route {
	tokensHandler := handlers.NewTokensHandler(tokens)
	menuHandler := handlers.NewMenuHandler(repo.NewMenuRepo(db))
	reviewsHandler := handlers.NewReviewsHandler(repo.NewReviewRepo(db))
	cartsHandler := handlers.NewCartsHandler(repo.NewCartRepo(db))
	usersHandler := handlers.NewUsersHandler(repo.NewUserRepo(db))

	return []Route{
		{"POST", "/jwt", AccessPublic, tokensHandler.Issue},

		{"GET", "/menu", AccessPublic, menuHandler.ListMenu},
		{"POST", "/menu", AccessAdmin, menuHandler.CreateMenuItem},

		{"GET", "/carts", AccessPublic, cartsHandler.ListCarts},
		{"POST", "/carts", AccessPublic, cartsHandler.AddToCart},
		{"DELETE", "/carts/:id", AccessPublic, cartsHandler.RemoveFromCart},

		{"GET", "/reviews", AccessPublic, reviewsHandler.ListReviews},

		{"GET", "/users", AccessAdmin, usersHandler.ListUsers},
		{"POST", "/users", AccessPublic, usersHandler.Register},
		{"GET", "/users/admin/:email", AccessSelf, usersHandler.CheckAdmin},
		{"PATCH", "/users/admin/:email", AccessAdmin, usersHandler.MakeAdmin},
		{"DELETE", "/users/:email", AccessAdmin, usersHandler.DeleteUser},
	}
}

func guard(m *middlewares.AuthMiddleware, access Access) []gin.HandlerFunc {
	switch access {
	case AccessAuth:
		return []gin.HandlerFunc{m.RequireAuth()}
	case AccessAdmin:
		return []gin.HandlerFunc{m.RequireAuth(), m.RequireAdmin()}
	case AccessSelf:
		return []gin.HandlerFunc{m.RequireAuth(), m.RequireSelf("email")}
	default:
		return nil
	}
}
