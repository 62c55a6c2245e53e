package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"github.com/losalerces/backend/internal/app"
	"github.com/losalerces/backend/internal/auth"
	"github.com/losalerces/backend/internal/identity"
	"github.com/losalerces/backend/internal/model"
	"github.com/losalerces/backend/internal/service"
	"github.com/losalerces/backend/internal/token"
)

func main() {
	profile := flag.String("profile", os.Getenv("APP_PROFILE"), "configuration profile (configs/<profile>.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *profile); err != nil {
		fmt.Fprintln(os.Stderr, "auth:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, profile string) error {
	deps, err := app.Bootstrap(profile, "auth")
	if err != nil {
		return err
	}
	defer deps.Close()
	log := deps.Log

	issuer, err := token.NewIssuer(deps.Config.JWT)
	if err != nil {
		return fmt.Errorf("init token issuer: %w", err)
	}

	users := identity.NewUserManager(deps.DB, identity.NewBcryptHasher(bcrypt.DefaultCost), identity.WithLogger(log))
	roles := identity.NewRoleManager(deps.DB, log)
	authSvc := auth.NewService(deps.DB, users, roles, issuer, log)

	if deps.Config.App.SeedRoles {
		if err := authSvc.SeedRoles(ctx, model.DefaultRole); err != nil {
			return err
		}
	}

	srv, hs := service.NewServer(log, deps.Metrics)
	service.RegisterAuthServiceServer(srv, service.NewAuthService(authSvc, issuer, log))
	service.MarkServing(hs, service.AuthServiceName)

	if err := deps.Serve(ctx, srv, deps.Config.GRPC.AuthAddr); err != nil {
		log.Error("auth server stopped", "error", err)
		return err
	}
	return nil
}
