package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	sessionstore "github.com/dalemusser/liderplan/internal/app/store/sessions"
	userstore "github.com/dalemusser/liderplan/internal/app/store/users"
	"github.com/dalemusser/liderplan/internal/app/system/authutil"
	"github.com/dalemusser/liderplan/internal/app/system/indexes"
	"github.com/dalemusser/liderplan/internal/app/system/validators"
	"github.com/dalemusser/liderplan/internal/app/system/workers"
	"github.com/dalemusser/liderplan/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	mongoURI      string
	mongoDatabase string
	timeout       time.Duration

	adminEmail    string
	adminName     string
	adminPassword string

	idleFor time.Duration

	rootCmd = &cobra.Command{
		Use:          "liderplanctl",
		Short:        "Administrative tasks for the LiderPlan API",
		SilenceUsage: true,
	}

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN user, or promote an existing user with that email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				pw := adminPassword
				if pw == "" {
					pw = os.Getenv("LIDERPLAN_ADMIN_PASSWORD")
				}
				return createAdmin(ctx, db, adminEmail, adminName, pw, cmd.OutOrStdout())
			})
		},
	}

	closeIdleCmd = &cobra.Command{
		Use:   "close-idle-sessions",
		Short: "Close sessions with no request for longer than --idle, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				return closeIdleSessions(ctx, db, idleFor, cmd.OutOrStdout())
			})
		},
	}

	ensureSchemaCmd = &cobra.Command{
		Use:   "ensure-schema",
		Short: "Create collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				return ensureSchema(ctx, db, cmd.OutOrStdout())
			})
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("LIDERPLAN_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	rootCmd.PersistentFlags().StringVar(&mongoDatabase, "mongo-database", envOr("LIDERPLAN_MONGO_DATABASE", "liderplan"), "MongoDB database name")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall deadline for the command")

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email of the admin (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrador", "Full name of the admin")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (default: $LIDERPLAN_ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("email")

	closeIdleCmd.Flags().DurationVar(&idleFor, "idle", 72*time.Hour, "Idle time after which a session is closed")

	rootCmd.AddCommand(createAdminCmd, ensureSchemaCmd, closeIdleCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func withDB(cmd *cobra.Command, fn func(ctx context.Context, db *mongo.Database) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return fn(ctx, client.Database(mongoDatabase))
}

// createAdmin inserts an ADMIN user. When the email is taken the existing
// user is promoted instead and its password is left alone.
func createAdmin(ctx context.Context, db *mongo.Database, email, name, password string, out io.Writer) error {
	users := userstore.New(db)

	if err := authutil.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}

	u, err := users.Create(ctx, models.User{
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	switch {
	case err == nil:
		fmt.Fprintf(out, "created admin %s (%s)\n", u.Email, u.ID.Hex())
		return nil
	case errors.Is(err, userstore.ErrDuplicateEmail):
		if _, err := users.PromoteByEmail(ctx, email); err != nil {
			return fmt.Errorf("promote existing user: %w", err)
		}
		fmt.Fprintf(out, "user %s already exists; role set to %s\n", email, models.RoleAdmin)
		return nil
	default:
		return fmt.Errorf("create admin: %w", err)
	}
}

func ensureSchema(ctx context.Context, db *mongo.Database, out io.Writer) error {
	// schema helpers log through the global logger
	logger, _ := zap.NewDevelopment()
	defer zap.ReplaceGlobals(logger)()

	if err := validators.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("indexes: %w", err)
	}
	fmt.Fprintf(out, "schema ensured on %s\n", db.Name())
	return nil
}

func closeIdleSessions(ctx context.Context, db *mongo.Database, idle time.Duration, out io.Writer) error {
	if idle <= 0 {
		return fmt.Errorf("--idle must be positive")
	}
	sweeper := workers.NewSessionSweeper(sessionstore.New(db), idle, idle, zap.NewNop())
	n, err := sweeper.RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "closed %d idle sessions\n", n)
	return nil
}
