package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/models"
	"github.com/noah-isme/sma-academic-api/internal/repository"
	"github.com/noah-isme/sma-academic-api/internal/service"
	"github.com/noah-isme/sma-academic-api/migrations"
	"github.com/noah-isme/sma-academic-api/pkg/config"
	"github.com/noah-isme/sma-academic-api/pkg/database"
	"github.com/noah-isme/sma-academic-api/pkg/logger"
)

const usage = `usage: migrate <command> [args]

commands:
  up                                  apply all pending migrations
  down                                roll back the latest migration
  status                              print migration status
  seed-admin <email> <password> <name> create the first ADMIN account`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "seed-admin":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		auth := service.NewAuthService(repository.NewUserRepository(db), validator.New(), logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		})
		user, err := auth.SeedUser(ctx, args[0], args[1], strings.Join(args[2:], " "), models.RoleAdmin)
		if err != nil {
			logr.Fatal("seed admin failed", zap.Error(err))
		}
		logr.Info("admin account created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	default:
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			logr.Fatal("goose dialect", zap.Error(err))
		}
		if err := goose.Run(command, db.DB, ".", args...); err != nil {
			logr.Fatal("migration failed", zap.String("command", command), zap.Error(err))
		}
	}
}
