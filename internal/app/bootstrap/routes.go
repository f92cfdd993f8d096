// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/agreeverse/internal/app/features/accounts"
	"github.com/dalemusser/agreeverse/internal/app/features/admin"
	auditfeature "github.com/dalemusser/agreeverse/internal/app/features/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/features/authgoogle"
	"github.com/dalemusser/agreeverse/internal/app/features/coordinators"
	"github.com/dalemusser/agreeverse/internal/app/features/farmers"
	healthfeature "github.com/dalemusser/agreeverse/internal/app/features/health"
	"github.com/dalemusser/agreeverse/internal/app/features/members"
	"github.com/dalemusser/agreeverse/internal/app/features/payments"
	"github.com/dalemusser/agreeverse/internal/app/features/session"
	"github.com/dalemusser/agreeverse/internal/app/features/users"
	"github.com/dalemusser/agreeverse/internal/app/store/audit"
	cropstore "github.com/dalemusser/agreeverse/internal/app/store/crops"
	metricsstore "github.com/dalemusser/agreeverse/internal/app/store/metrics"
	identitystore "github.com/dalemusser/agreeverse/internal/app/store/identities"
	"github.com/dalemusser/agreeverse/internal/app/store/oauthstate"
	paymentstore "github.com/dalemusser/agreeverse/internal/app/store/payments"
	"github.com/dalemusser/agreeverse/internal/app/system/auditlog"
	"github.com/dalemusser/agreeverse/internal/app/system/auth"
	"github.com/dalemusser/agreeverse/internal/app/system/metrics"
	"github.com/dalemusser/agreeverse/internal/app/system/ratelimit"
	"github.com/dalemusser/agreeverse/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// Layout:
//
//	/health                      liveness + Mongo ping
//	/metrics                     Prometheus
//	/auth/google[/callback]      Google sign-in; /auth/logout
//	/api/v1/verify, /signout     role-agnostic session endpoints
//	/api/v1/{admin,coordinator,farmer,user}/...
//	/api/v1/payment/...
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	tokens, err := auth.NewTokens(appCfg.JWTSecret)
	if err != nil {
		logger.Error("token signer init failed", zap.Error(err))
		return nil, err
	}
	cookies := auth.NewCookies(appCfg.CookieDomain, appCfg.CookieSecure)
	m := metrics.New()

	stores := identitystore.NewStores(db)
	crops := cropstore.New(db)
	paymentStore := paymentstore.New(db)
	auditStore := audit.New(db)
	al := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	limiter := ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginAccountLimit, appCfg.LoginAccountWindow)
	deps.Background.OnStop(limiter.Stop)

	adminGuard := auth.NewGuard(models.RoleAdmin, stores.Admins.GetByID, tokens, cookies, m, logger)
	coordGuard := auth.NewGuard(models.RoleCoordinator, stores.Coordinators.GetByID, tokens, cookies, m, logger)
	farmerGuard := auth.NewGuard(models.RoleFarmer, stores.Farmers.GetByID, tokens, cookies, m, logger)
	userGuard := auth.NewGuard(models.RoleUser, stores.Users.GetByID, tokens, cookies, m, logger)

	acctDeps := accounts.Deps{
		Tokens:    tokens,
		Cookies:   cookies,
		TokenTTL:  appCfg.TokenTTL,
		Directory: identitystore.NewDirectory(stores),
		Limiter:   limiter,
		Audit:     al,
		Metrics:   m,
		Log:       logger,
	}
	svc := members.NewService(stores, crops, deps.MongoClient, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))
	r.Handle("/metrics", m.Handler())

	// Google sign-in
	google := authgoogle.NewHandler(
		authgoogle.Config{
			ClientID:     appCfg.GoogleClientID,
			ClientSecret: appCfg.GoogleClientSecret,
			BaseURL:      appCfg.BaseURL,
			FrontendURL:  appCfg.FrontendURL,
			TokenTTL:     appCfg.OAuthTokenTTL,
			StrictState:  appCfg.OAuthStrictState,
		},
		authgoogle.NewReconciler(stores),
		oauthstate.New(db),
		authgoogle.NewFlow(appCfg.SessionKey, appCfg.CookieSecure),
		tokens, cookies, al, m, logger,
	)
	if !google.IsConfigured() {
		logger.Info("Google sign-in disabled: client id/secret not set")
	}
	r.Mount("/auth", authgoogle.Routes(google))

	r.Route("/api/v1", func(r chi.Router) {
		session.Register(r, session.NewHandler(tokens, cookies, al, logger))

		r.Route("/admin", func(r chi.Router) {
			accounts.Register(r, accounts.NewHandler(acctDeps, accounts.AdminRole(stores, adminGuard)))
			admin.Register(r, admin.NewHandler(svc, crops, paymentStore, metricsstore.New(db), adminGuard, al, logger))
			auditfeature.Register(r, auditfeature.NewHandler(auditStore, adminGuard, logger))
		})

		r.Route("/coordinator", func(r chi.Router) {
			accounts.Register(r, accounts.NewHandler(acctDeps, accounts.CoordinatorRole(stores, coordGuard)))
			coordinators.Register(r, coordinators.NewHandler(svc, crops, coordGuard, al, logger))
		})

		r.Route("/farmer", func(r chi.Router) {
			accounts.Register(r, accounts.NewHandler(acctDeps, accounts.FarmerRole(stores, farmerGuard)))
			farmers.Register(r, farmers.NewHandler(crops, farmerGuard, logger))
		})

		r.Route("/user", func(r chi.Router) {
			accounts.Register(r, accounts.NewHandler(acctDeps, accounts.UserRole(stores, userGuard)))
			users.Register(r, users.NewHandler(crops, paymentStore, userGuard, logger))
		})

		r.Route("/payment", func(r chi.Router) {
			payments.Register(r, payments.NewHandler(crops, paymentStore, userGuard, payments.Config{
				KeySecret: appCfg.PaymentKeySecret,
				Currency:  appCfg.PaymentCurrency,
			}, logger))
		})
	})

	return r, nil
}
