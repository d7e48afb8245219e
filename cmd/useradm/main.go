// Command useradm runs operator tasks against the configured store and
// cache:
//
//	useradm create -u <username> -e <email> [-c config.json] [-d dsn]
//	useradm flush-cache [-b redis] [-r host:port]
//	useradm ping
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/logging"
	"github.com/BakeNecko/sidus-heroes/internal/server"
	"github.com/BakeNecko/sidus-heroes/internal/server/auth"
	"github.com/BakeNecko/sidus-heroes/internal/server/config"
	"github.com/BakeNecko/sidus-heroes/internal/server/services"
	"github.com/BakeNecko/sidus-heroes/internal/useradm"
)

const commandTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return useradm.ErrUsage
	}
	command, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	deps, err := server.OpenDeps(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	if command == "create" {
		if err := deps.Store.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	logger := logging.NewJSON(os.Stderr, cfg.LogLevel)
	as := services.NewAuthService(
		deps.Store.Users(deps.Store.DB()),
		auth.NewPasswordHasher(cfg.BcryptCost),
		auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration),
		logger,
	)
	checks := map[string]useradm.Pinger{"store": deps.Store, "cache": deps.Cache}

	return useradm.NewApp(as, deps.Cache, checks, os.Stdin, os.Stdout).Run(ctx, command, args)
}
