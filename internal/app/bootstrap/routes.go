// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	errorsfeature "github.com/dalemusser/groupbook/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/groupbook/internal/app/features/groups"
	healthfeature "github.com/dalemusser/groupbook/internal/app/features/health"
	loginfeature "github.com/dalemusser/groupbook/internal/app/features/login"
	logoutfeature "github.com/dalemusser/groupbook/internal/app/features/logout"
	preferencesfeature "github.com/dalemusser/groupbook/internal/app/features/preferences"
	registrationsfeature "github.com/dalemusser/groupbook/internal/app/features/registrations"
	schedulesfeature "github.com/dalemusser/groupbook/internal/app/features/schedules"
	systemusersfeature "github.com/dalemusser/groupbook/internal/app/features/systemusers"
	userinfofeature "github.com/dalemusser/groupbook/internal/app/features/userinfo"
	userstore "github.com/dalemusser/groupbook/internal/app/store/users"
	"github.com/dalemusser/groupbook/internal/app/system/auditlog"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/app/system/ratelimit"
	"github.com/dalemusser/groupbook/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// APIPrefix is where every JSON endpoint is mounted.
const APIPrefix = "/api/v1"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It applies request-id and session
// middleware and mounts every feature router under APIPrefix.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	to := appCfg.Timeouts.WithDefaults()

	// Fetch fresh user data on each request so role changes and
	// deactivations take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.Store, to.Short))

	errLog := errorsfeature.NewErrorLogger(logger)
	audit := auditlog.New(logger, appCfg.Audit)
	svc := enrollment.New(deps.Store, logger)
	accounts := userstore.New(deps.Store)
	limiter := ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginEmailLimit, appCfg.LoginEmailWindow,
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	// Loads SessionUser into context if signed in; auth.CurrentUser(r)
	// reads it.
	r.Use(sessionMgr.LoadSessionUser)
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	r.Route(APIPrefix, func(api chi.Router) {
		api.NotFound(errorsfeature.NotFound)
		api.MethodNotAllowed(errorsfeature.MethodNotAllowed)

		healthHandler := healthfeature.NewHandler(deps.Store, deps.Backend, to.Ping, logger)
		api.Mount("/health", healthfeature.Routes(healthHandler))

		// Authentication
		loginHandler := loginfeature.NewHandler(accounts, sessionMgr, limiter, errLog, audit, to.Short, logger)
		api.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
		api.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		userinfofeature.MountRoutes(api, userinfofeature.NewHandler())

		// Groups and registrations
		groupsHandler := groupsfeature.NewHandler(svc, errLog, audit, to, logger)
		api.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

		registrationsHandler := registrationsfeature.NewHandler(svc, errLog, to, logger)
		api.Mount("/registrations", registrationsfeature.Routes(registrationsHandler, sessionMgr))

		// Accounts
		usersHandler := systemusersfeature.NewHandler(deps.Store, accounts, errLog, audit, to, logger)
		api.Mount("/users", systemusersfeature.Routes(usersHandler, sessionMgr))

		// Instructor availability
		prefsHandler := preferencesfeature.NewHandler(svc, errLog, to, logger)
		api.Mount("/preferences", preferencesfeature.Routes(prefsHandler, sessionMgr))

		schedulesHandler := schedulesfeature.NewHandler(svc, errLog, to, logger)
		api.Mount("/schedules", schedulesfeature.Routes(schedulesHandler, sessionMgr))
	})

	return r, nil
}
