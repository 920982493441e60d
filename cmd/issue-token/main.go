// Command issue-token prints a signed JWT for local testing of the API realms.
//
//	issue-token -realm admin -sub ops -role admin
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/attaboy/puzzlequest/internal/auth"
	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/infra"
)

func main() {
	realm := flag.String("realm", string(auth.RealmPlayer), "player, admin or verifier")
	sub := flag.String("sub", "", "account address the token acts for")
	role := flag.String("role", "", "admin role (auditor, operator, admin)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, auth.Realm(*realm), domain.Address(*sub), *role); err != nil {
		logger.Error("issue token failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, realm auth.Realm, sub domain.Address, role string) error {
	if err := infra.LoadDotEnv(logger); err != nil {
		return err
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	playerExpiry, adminExpiry, verifierExpiry, err := cfg.Expiries()
	if err != nil {
		return err
	}
	if realm == auth.RealmAdmin {
		if role == "" {
			role = auth.RoleAdmin
		}
		if !slices.Contains(auth.AllAdminRoles(), role) {
			return fmt.Errorf("unknown admin role %q", role)
		}
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, playerExpiry, adminExpiry, verifierExpiry).GenerateToken(realm, sub, role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
