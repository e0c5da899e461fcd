// Command adduser provisions an administrator account.
//
//	adduser -username admin < password.txt
//	adduser -username admin -password 'secret'
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"rosterdesk/internal/config"
	"rosterdesk/internal/database"
	"rosterdesk/internal/log"
	"rosterdesk/internal/repository"
	"rosterdesk/internal/security"
)

func main() {
	username := flag.String("username", "", "administrator username")
	password := flag.String("password", "", "password (read from stdin when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := log.New(cfg.Environment, cfg.Logging.Level, "")

	name := strings.TrimSpace(*username)
	if name == "" || len(name) > cfg.Limits.Username {
		fmt.Fprintf(os.Stderr, "username is required and must be at most %d characters\n", cfg.Limits.Username)
		os.Exit(2)
	}

	secret := *password
	if secret == "" {
		secret, err = readPassword()
		if err != nil {
			logger.Fatal().Err(err).Msg("read password")
		}
	}
	if secret == "" || len(secret) > cfg.Limits.Password {
		fmt.Fprintf(os.Stderr, "password is required and must be at most %d characters\n", cfg.Limits.Password)
		os.Exit(2)
	}

	hash, err := security.HashPassword(secret, cfg.Security.BcryptCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password")
	}

	if err := database.Migrate(cfg.Postgres, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer pool.Close()

	user, err := repository.NewUserRepository(pool).Create(ctx, name, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			fmt.Fprintf(os.Stderr, "user %q already exists\n", name)
			os.Exit(1)
		}
		logger.Fatal().Err(err).Msg("create user")
	}

	logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("administrator created")
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
