// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	activitiesfeature "github.com/dalemusser/liderplan/internal/app/features/activities"
	authapifeature "github.com/dalemusser/liderplan/internal/app/features/authapi"
	catalogfeature "github.com/dalemusser/liderplan/internal/app/features/catalog"
	dashboardfeature "github.com/dalemusser/liderplan/internal/app/features/dashboard"
	filesfeature "github.com/dalemusser/liderplan/internal/app/features/files"
	healthfeature "github.com/dalemusser/liderplan/internal/app/features/health"
	plansfeature "github.com/dalemusser/liderplan/internal/app/features/plans"
	usersfeature "github.com/dalemusser/liderplan/internal/app/features/users"
	"github.com/dalemusser/liderplan/internal/app/planner"
	activitystore "github.com/dalemusser/liderplan/internal/app/store/activities"
	planstore "github.com/dalemusser/liderplan/internal/app/store/plans"
	sessionstore "github.com/dalemusser/liderplan/internal/app/store/sessions"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/auth"
	"github.com/dalemusser/liderplan/internal/app/system/httpx"
	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/dalemusser/liderplan/internal/app/system/ratelimit"
	"github.com/dalemusser/liderplan/internal/app/system/txn"
	"github.com/dalemusser/liderplan/internal/domain/catalog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// apiPrefix is where every JSON endpoint is mounted.
const apiPrefix = "/api"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// LiderPlan mounts the public endpoints (health, metrics, catalog, register
// and login) and puts every other feature behind bearer-token
// authentication.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokenManager([]byte(appCfg.TokenHashKey), []byte(appCfg.TokenBlockKey), appCfg.TokenTTL)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	cat, err := catalog.Default()
	if err != nil {
		logger.Error("catalog load failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(db)
	sessions := sessionstore.New(db)
	audit := newAuditLogger(appCfg, deps, logger)
	authn := auth.NewAuthenticator(tokens, users, sessions, logger)
	svc := planner.New(
		planstore.New(db),
		activitystore.New(db),
		users,
		txn.NewRunner(db, logger),
		cat,
		loc,
		logger,
	)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	r.Route(apiPrefix, func(api chi.Router) {
		api.Mount("/health", healthfeature.Routes(healthHandler))
		api.Mount("/catalog", catalogfeature.Routes(catalogfeature.NewHandler(cat)))

		limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateIP, appCfg.LoginRateEmail)
		authHandler := authapifeature.NewHandler(users, sessions, tokens, limiter, audit, logger)
		api.Mount("/auth", authapifeature.Routes(authHandler, authn.RequireAuth))

		api.Group(func(pr chi.Router) {
			pr.Use(authn.RequireAuth)

			pr.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(users, sessions, audit, logger)))
			pr.Mount("/plans", plansfeature.Routes(plansfeature.NewHandler(svc, logger)))
			pr.Mount("/activities", activitiesfeature.Routes(activitiesfeature.NewHandler(svc, logger)))

			filesHandler := filesfeature.NewHandler(deps.Files, logger)
			filesHandler.BasePath = apiPrefix + "/files"
			pr.Mount("/files", filesfeature.Routes(filesHandler))

			pr.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(db, loc, logger)))
		})
	})

	return r, nil
}
