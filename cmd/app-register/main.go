package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"custodial-wallet.backend/internal/config"
	"custodial-wallet.backend/internal/domain/entities"
	"custodial-wallet.backend/internal/infrastructure/datasources/postgres"
	"custodial-wallet.backend/internal/infrastructure/models"
	"custodial-wallet.backend/internal/infrastructure/repositories"
	"custodial-wallet.backend/internal/usecases"
	"github.com/joho/godotenv"
)

type appRegistrar interface {
	Register(ctx context.Context, input *entities.RegisterAppInput) (*entities.RegisteredApp, error)
}

type appRegisterDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (appRegistrar, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func defaultAppRegisterDeps() appRegisterDeps {
	return appRegisterDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (appRegistrar, io.Closer, error) {
			db, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			if err := models.AutoMigrate(db); err != nil {
				_ = sqlDB.Close()
				return nil, nil, fmt.Errorf("failed to migrate: %w", err)
			}
			return usecases.NewAppUsecase(repositories.NewAppRepository(db)), sqlDB, nil
		},
		out: os.Stdout,
	}
}

func runAppRegister(args []string, deps appRegisterDeps) error {
	def := defaultAppRegisterDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	var redirects stringList
	fs := flag.NewFlagSet("app-register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	developerID := fs.String("developer-id", "", "owning developer id (required)")
	name := fs.String("name", "", "application name (required)")
	description := fs.String("description", "", "application description")
	iconURL := fs.String("icon-url", "", "application icon url")
	fs.Var(&redirects, "redirect-url", "allowed redirect url, repeatable (at least one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *developerID == "" {
		return errors.New("--developer-id is required")
	}
	if *name == "" {
		return errors.New("--name is required")
	}
	if len(redirects) == 0 {
		return errors.New("at least one --redirect-url is required")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	registrar, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	res, err := registrar.Register(context.Background(), &entities.RegisterAppInput{
		DeveloperID:  *developerID,
		Name:         *name,
		Description:  *description,
		IconURL:      *iconURL,
		RedirectURLs: redirects,
	})
	if err != nil {
		return fmt.Errorf("failed registering app: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Registered app and stored in DB")
	_, _ = fmt.Fprintf(deps.out, "name=%s\n", res.App.Name)
	_, _ = fmt.Fprintf(deps.out, "redirect_urls=%s\n", strings.Join(res.App.RedirectURLs, ","))
	_, _ = fmt.Fprintf(deps.out, "APP_ID=%s\n", res.App.AppID)
	_, _ = fmt.Fprintf(deps.out, "CLIENT_SECRET=%s\n", res.ClientSecret)
	_, _ = fmt.Fprintln(deps.out, "The client secret is not stored and cannot be shown again.")
	return nil
}

func main() {
	if err := runAppRegister(os.Args[1:], defaultAppRegisterDeps()); err != nil {
		log.Fatal(err)
	}
}
