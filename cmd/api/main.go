// @title                      Portfolio API
// @version                    1.0
// @description                Blog, contact inbox and admin authentication for a personal portfolio site.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/devportfolio/portfolio-api/docs"
	"github.com/devportfolio/portfolio-api/internal/api"
	"github.com/devportfolio/portfolio-api/internal/core/ports"
	"github.com/devportfolio/portfolio-api/internal/core/service"
	"github.com/devportfolio/portfolio-api/internal/infrastructure/config"
	"github.com/devportfolio/portfolio-api/internal/infrastructure/db/memory"
	mongodb "github.com/devportfolio/portfolio-api/internal/infrastructure/db/mongo"
	redisdb "github.com/devportfolio/portfolio-api/internal/infrastructure/db/redis"
	"github.com/devportfolio/portfolio-api/internal/infrastructure/http/handlers"
	"github.com/devportfolio/portfolio-api/internal/infrastructure/notify"
	"github.com/devportfolio/portfolio-api/internal/infrastructure/queue"
	"github.com/devportfolio/portfolio-api/pkg/logger"
)

var (
	buildVersion string
	buildCommit  string
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    ports.UserRepository
	posts    ports.PostRepository
	contacts ports.ContactRepository
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("error loading config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "portfolio-api",
	})
	log.Info().
		Str("version", orNA(buildVersion)).
		Str("commit", orNA(buildCommit)).
		Str("env", cfg.Env).
		Str("store", cfg.Store).
		Msg("starting")

	var (
		repos   repositories
		health  []handlers.Dependency
		limits  api.RateLimits
		closers []func(context.Context)
	)

	switch cfg.Store {
	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to mongo")
		}
		closers = append(closers, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		})

		users := mongodb.NewUserRepository(db)
		posts := mongodb.NewPostRepository(db)
		contacts := mongodb.NewContactRepository(db)
		if err := mongodb.EnsureIndexes(ctx, users, posts, contacts); err != nil {
			log.Fatal().Err(err).Msg("error creating indexes")
		}
		repos = repositories{users: users, posts: posts, contacts: contacts}
		health = append(health, handlers.MongoDependency(db))

		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to redis")
		}
		closers = append(closers, func(context.Context) {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("redis close")
			}
		})
		health = append(health, handlers.RedisDependency(rdb))
		limits = redisRateLimits(rdb, cfg.RateLimit, log)

	case "memory":
		log.Warn().Msg("using the in-memory store; data is lost on restart")
		store := memory.NewStore()
		repos = repositories{users: store.Users(), posts: store.Posts(), contacts: store.Contacts()}
		limits = memoryRateLimits(cfg.RateLimit)
	}

	// --- Services ---
	hasher := service.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := service.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)

	userService := service.NewUserService(repos.users, hasher, log)
	authService := service.NewAuthService(repos.users, hasher, tokens, log)
	postService := service.NewPostService(repos.posts, log)

	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.Buffer, newNotifier(cfg.SMTP, log), log)
	// Workers outlive the signal context so Stop can drain queued jobs.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher.Start(workerCtx)
	contactService := service.NewContactService(repos.contacts, dispatcher, log)

	created, err := userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating the admin account")
	}
	if created {
		log.Info().Str("email", cfg.Admin.Email).Msg("admin account created")
	}

	e := api.NewRouter(api.Deps{
		Logger:      log,
		Tokens:      tokens,
		Auth:        authService,
		Users:       userService,
		Posts:       postService,
		Contacts:    contactService,
		RateLimits:  limits,
		CORSOrigins: cfg.CORSOrigins,
		BodyLimit:   cfg.BodyLimit,
		Health:      health,
	})
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	dispatcher.Stop()
	for _, closeFn := range closers {
		closeFn(shutdownCtx)
	}
	log.Info().Msg("stopped")
}

func newNotifier(cfg config.SMTPConfig, log zerolog.Logger) ports.ContactNotifier {
	if !cfg.Enabled() {
		return notify.NewLogNotifier(log)
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		To:       cfg.NotifyTo,
	})
}

func redisRateLimits(rdb *goredis.Client, cfg config.RateLimitConfig, log zerolog.Logger) api.RateLimits {
	return api.RateLimits{
		Login:   redisdb.NewRateLimiter(rdb, "login", cfg.Login, cfg.Window, log),
		Like:    redisdb.NewRateLimiter(rdb, "like", cfg.Like, cfg.Window, log),
		Contact: redisdb.NewRateLimiter(rdb, "contact", cfg.Contact, cfg.Window, log),
	}
}

func memoryRateLimits(cfg config.RateLimitConfig) api.RateLimits {
	return api.RateLimits{
		Login:   api.NewMemoryRateLimitStore(cfg.Login, cfg.Window),
		Like:    api.NewMemoryRateLimitStore(cfg.Like, cfg.Window),
		Contact: api.NewMemoryRateLimitStore(cfg.Contact, cfg.Window),
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
