// Command seed provisions the baseline RBAC data: one permission per
// resource and action pair, the admin and user roles, and an initial
// administrator account. Running it twice is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/accessd/accessd/internal/app"
	"github.com/accessd/accessd/internal/auth"
	"github.com/accessd/accessd/internal/platform/db"
	"github.com/accessd/accessd/internal/rbac"
)

var seedResources = []string{"users", "roles", "permissions"}

var seedActions = []string{rbac.ActionCreate, rbac.ActionRead, rbac.ActionUpdate, rbac.ActionDelete}

func main() {
	refresh := flag.Bool("refresh", false, "truncate RBAC tables before seeding")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	ctx := context.Background()
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		logger.Error("bootstrap schema", slog.Any("error", err))
		os.Exit(1)
	}

	if *refresh {
		_, err = pool.Exec(ctx, `TRUNCATE user_roles, role_permissions, users, roles, permissions RESTART IDENTITY`)
		if err != nil {
			logger.Error("truncate", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("existing RBAC data removed")
	}

	for _, resource := range seedResources {
		for _, action := range seedActions {
			name := fmt.Sprintf("%s %s", action, resource)
			description := fmt.Sprintf("Allows %s on %s", action, resource)
			_, err = pool.Exec(ctx,
				`INSERT INTO permissions (name, description, resource, action)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (name) DO NOTHING`,
				name, description, resource, action)
			if err != nil {
				logger.Error("seed permission", slog.String("name", name), slog.Any("error", err))
				os.Exit(1)
			}
		}
	}
	logger.Info("permissions seeded", slog.Int("count", len(seedResources)*len(seedActions)))

	for _, role := range []struct{ name, description string }{
		{"admin", "Full access to every resource"},
		{"user", "Read-only access"},
	} {
		_, err = pool.Exec(ctx,
			`INSERT INTO roles (name, description) VALUES ($1, $2)
			 ON CONFLICT (name) DO NOTHING`, role.name, role.description)
		if err != nil {
			logger.Error("seed role", slog.String("name", role.name), slog.Any("error", err))
			os.Exit(1)
		}
	}

	// admin holds everything, user holds the read permissions
	_, err = pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id)
		 SELECT r.id, p.id FROM roles r, permissions p WHERE r.name = 'admin'
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		logger.Error("grant admin permissions", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id)
		 SELECT r.id, p.id FROM roles r, permissions p
		 WHERE r.name = 'user' AND p.action = 'read'
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		logger.Error("grant user permissions", slog.Any("error", err))
		os.Exit(1)
	}

	hash, err := auth.NewHasher(cfg.BcryptCost).Hash("admin123")
	if err != nil {
		logger.Error("hash admin password", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO users (username, email, password_hash, is_active)
		 VALUES ('admin', 'admin@example.com', $1, TRUE)
		 ON CONFLICT (username) DO NOTHING`, hash)
	if err != nil {
		logger.Error("seed admin user", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT u.id, r.id FROM users u, roles r
		 WHERE u.username = 'admin' AND r.name = 'admin'
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		logger.Error("assign admin role", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seed complete", slog.String("username", "admin"))
}
