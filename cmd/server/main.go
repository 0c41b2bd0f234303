package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/lib26/Spring-Security-Study"
	"github.com/lib26/Spring-Security-Study/middleware/tokenware"
)

func main() {
	// Missing .env is fine, the environment may be fully populated already
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal("unable to parse configuration: ", err)
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg))
		fmt.Println("============")
	}

	ctx := context.Background()

	bunDB, err := withPersistence(ctx, cfg)
	if err != nil {
		log.Fatal("unable to initialize persistence: ", err)
	}
	defer bunDB.Close()

	repo := auth.NewRepositoryManager(bunDB)
	repo.MustValidate()

	userProvider := auth.NewUserProvider(repo.Users())

	authenticator, err := auth.NewAuthenticator(userProvider, cfg)
	if err != nil {
		log.Fatal("unable to initialize authenticator: ", err)
	}

	srv := withHTTPServer(cfg, authenticator, repo)

	srv.Serve(cfg.Address)

	WaitExitSignal()
}

func withPersistence(ctx context.Context, cfg *Config) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	bunDB := bun.NewDB(db, sqlitedialect.New())

	if err := auth.RunMigrations(ctx, bunDB); err != nil {
		return nil, err
	}

	return bunDB, nil
}

func withHTTPServer(cfg *Config, authenticator auth.Authenticator, repo auth.RepositoryManager) router.Server[*fiber.App] {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: cfg.LogRoutes,
			StrictRouting:     false,
		}))
	})

	srv.Router().Use(tokenware.New(tokenware.Config{
		Validator:   tokenValidator{authenticator},
		ContextKey:  cfg.GetContextKey(),
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
		ContextEnricher: func(c context.Context, claims tokenware.AuthClaims) context.Context {
			if ac, ok := claims.(auth.AuthClaims); ok {
				return auth.WithClaimsContext(c, ac)
			}
			return c
		},
		OnRejected: func(ctx router.Context, err error) {
			log.Println("bearer token rejected: ", err)
		},
	}))

	// Rule order matters: /api/user must resolve before the /api/user/*
	// admin rule or the profile route would demand the admin entitlement.
	policy := auth.NewAccessPolicy().
		WithContextKey(cfg.GetContextKey()).
		Public("/api/hello", "/api/authenticate", "/api/signup").
		Authenticated("/api/user").
		RequireEntitlement(auth.EntitlementAdmin, "/api/user/*")

	srv.Router().Use(policy.Gate())

	controller := auth.NewAuthController(
		auth.WithControllerRepo(repo),
		auth.WithControllerAuther(authenticator),
		auth.WithControllerDebug(cfg.Debug),
	)
	controller.AuthScheme = cfg.GetAuthScheme()
	controller.ContextKey = cfg.GetContextKey()

	auth.RegisterAuthRoutes(srv.Router(), controller)

	return srv
}

// tokenValidator adapts the authenticator to the token filter's interface
type tokenValidator struct {
	auther auth.Authenticator
}

func (v tokenValidator) Decode(raw string) (tokenware.AuthClaims, error) {
	claims, err := v.auther.ClaimsFromToken(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
