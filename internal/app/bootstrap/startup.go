// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	auditstore "github.com/dalemusser/liderplan/internal/app/store/audit"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/auditlog"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.AdminEmail != "" {
		audit := newAuditLogger(appCfg, deps, logger)
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, audit, logger); err != nil {
			return err
		}
	}

	if deps.sessionSweeper != nil {
		deps.sessionSweeper.Start()
	}
	return nil
}

// ensureAdmin promotes the user with email to ADMIN. A missing user is
// not an error; liderplanctl create-admin creates one.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, audit *auditlog.Logger, logger *zap.Logger) error {
	found, err := userstore.New(deps.MongoDatabase).PromoteByEmail(ctx, email)
	if err != nil {
		logger.Error("admin promotion failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if !found {
		logger.Warn("admin_email does not match any user; create one with liderplanctl create-admin",
			zap.String("email", email))
		return nil
	}
	audit.AdminPromoted(ctx, email)
	logger.Info("admin role ensured", zap.String("email", email))
	return nil
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
}
