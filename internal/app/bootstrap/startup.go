// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/groupbook/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It creates the bootstrap admin account when admin_email is configured and
// no user holds that email yet.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	created, err := userstore.New(deps.Store).EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminName)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		logger.Info("created bootstrap admin", zap.String("email", appCfg.AdminEmail))
	}
	return nil
}
