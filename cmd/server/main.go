package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/launchkit/modules/authweb"
	"github.com/dmitrymomot/launchkit/modules/publicapi"
	"github.com/dmitrymomot/launchkit/modules/settings"
	"github.com/dmitrymomot/launchkit/pkg/blob"
	"github.com/dmitrymomot/launchkit/pkg/cache"
	"github.com/dmitrymomot/launchkit/pkg/config"
	"github.com/dmitrymomot/launchkit/pkg/cookie"
	"github.com/dmitrymomot/launchkit/pkg/httpserver"
	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/mailer"
	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/storage/postgres"
	"github.com/dmitrymomot/launchkit/svc/apikey"
	"github.com/dmitrymomot/launchkit/svc/auth"
	"github.com/dmitrymomot/launchkit/svc/issue"
	"github.com/dmitrymomot/launchkit/svc/rbac"
	"github.com/dmitrymomot/launchkit/svc/session"
	"github.com/dmitrymomot/launchkit/svc/tenant"
)

type appConfig struct {
	CookieSecrets  []string `env:"COOKIE_SECRETS,required" envSeparator:","`
	RoleSeedPath   string   `env:"RBAC_SEED_PATH" envDefault:"migrations/roles.yml"`
	AvatarsEnabled bool     `env:"AVATARS_ENABLED" envDefault:"false"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		appCfg     appConfig
		srvCfg     httpserver.Config
		logCfg     logger.Config
		pgCfg      pg.Config
		cacheCfg   cache.Config
		mailCfg    mailer.Config
		authCfg    auth.Config
		sessCfg    session.Config
		authwebCfg authweb.Config
		googleCfg  auth.GoogleConfig
		githubCfg  auth.GithubConfig
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&srvCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&cacheCfg)
	config.MustLoad(&mailCfg)
	config.MustLoad(&authCfg)
	config.MustLoad(&sessCfg)
	config.MustLoad(&authwebCfg)
	config.MustLoad(&googleCfg)
	config.MustLoad(&githubCfg)

	log := logger.NewFromConfig(logCfg, logger.WithAttrs(logger.Component("server")))

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := cache.Connect(ctx, cacheCfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	store := postgres.New(pool)

	if err := seedRoles(ctx, store, appCfg.RoleSeedPath); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	cookies, err := cookie.New(appCfg.CookieSecrets)
	if err != nil {
		return fmt.Errorf("init cookie manager: %w", err)
	}

	var mail mailer.EmailSender
	if mailCfg.PostmarkServerToken != "" {
		mail, err = mailer.NewPostmarkClient(mailCfg)
		if err != nil {
			return fmt.Errorf("init postmark: %w", err)
		}
	} else {
		// No token means local development; emails land on disk.
		mail = mailer.NewDevSender(mailCfg.DevOutputDir)
		log.Info("postmark token missing, writing emails to disk",
			slog.String("dir", mailCfg.DevOutputDir))
	}

	authOpts := []auth.Option{auth.WithLogger(log)}
	if googleCfg.ClientID != "" {
		authOpts = append(authOpts, auth.WithProvider(auth.NewGoogleAdapter(googleCfg)))
	}
	if githubCfg.ClientID != "" {
		authOpts = append(authOpts, auth.WithProvider(auth.NewGithubAdapter(githubCfg)))
	}
	if appCfg.AvatarsEnabled {
		var blobCfg blob.Config
		config.MustLoad(&blobCfg)
		avatars, err := blob.New(ctx, blobCfg)
		if err != nil {
			return fmt.Errorf("init blob storage: %w", err)
		}
		authOpts = append(authOpts,
			auth.WithAvatarStorage(avatars),
			auth.WithAvatarCache(cache.New[string](redisClient, "avatar_url", avatars.TTL())),
		)
	}

	authSvc := auth.NewService(store, mail, authCfg, authOpts...)
	sessions := session.NewManager(store, cookies, sessCfg, session.WithLogger(log))
	perms := rbac.NewService(store, rbac.WithLogger(log))
	tenants := tenant.NewService(store, store, tenant.WithLogger(log))
	keys := apikey.NewService(store, apikey.WithLogger(log))
	issues := issue.NewService(store, issue.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", httpserver.Healthcheck(log, pg.Healthcheck(pool)))
	r.Mount("/auth", authweb.NewHandler(authSvc, sessions, cookies, authwebCfg, authweb.WithLogger(log)).Handle())
	r.Mount("/settings", settings.NewHandler(authSvc, tenants, perms, keys, store, sessions, settings.WithLogger(log)).Handle())
	r.Mount("/api/v1", publicapi.NewHandler(keys, perms, issues, publicapi.WithLogger(log)).Handle())

	return httpserver.Run(ctx, srvCfg, r, log)
}

// seedRoles makes the role and permission tables match the declarations on
// disk. Runs on every boot; the upserts make it idempotent.
func seedRoles(ctx context.Context, store *postgres.Storage, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	seeds, err := rbac.ParseSeed(f)
	if err != nil {
		return err
	}
	return store.ApplyRoleSeed(ctx, seeds)
}
