// Command promote-admin grants the admin role to an existing account. It is
// how the first administrator is created, since promotion over HTTP already
// requires one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/meethere/meethere-api/internal/domain"
	"github.com/meethere/meethere-api/internal/logging"
	"github.com/meethere/meethere-api/internal/repository"
)

type cliConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
}

func main() {
	email := flag.String("email", "", "email of the account to promote")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Init("promote-admin", cfg.LogLevel, cfg.AppEnv)

	if err := run(cfg, *email); err != nil {
		slog.Error("promotion failed", "email", *email, "error", err)
		os.Exit(1)
	}
}

func run(cfg cliConfig, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("-email is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no account registered with %s", email)
		}
		return err
	}
	if u.IsAdmin {
		slog.Info("account is already an admin", "user_id", u.ID)
		return nil
	}

	if err := users.SetAdmin(ctx, u.ID, true); err != nil {
		return err
	}
	slog.Info("account promoted to admin", "user_id", u.ID)
	return nil
}
