package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"job-selector/internal/ai"
	"job-selector/internal/analysis"
	googleauth "job-selector/internal/auth"
	"job-selector/internal/llm"
	"job-selector/internal/llm/gemini"
	"job-selector/internal/llm/openai"
	"job-selector/internal/resumes"
	"job-selector/internal/services/health"
	sharedauth "job-selector/internal/shared/auth"
	"job-selector/internal/shared/config"
	"job-selector/internal/shared/server"
	"job-selector/internal/shared/storage/db"
	"job-selector/internal/shared/storage/mongodb"
	"job-selector/internal/shared/storage/object"
	localstore "job-selector/internal/shared/storage/object/local"
	s3store "job-selector/internal/shared/storage/object/s3"
	"job-selector/internal/shared/telemetry"
	"job-selector/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Mongo  *mongo.Client
	Store  object.Store
	Tokens *sharedauth.TokenIssuer
	LLM    llm.Completer
	Health *health.Service

	UsersRepo   users.Repo
	ResumesRepo resumes.Repo

	UsersService    *users.Service
	ResumesService  *resumes.Service
	AnalysisService *analysis.Service
	GoogleAuth      *googleauth.GoogleService

	UsersHandler    *users.Handler
	ResumesHandler  *resumes.Handler
	AnalysisHandler *analysis.Handler
}

// Build prepares every dependency and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Health: health.NewService()}

	tokens, err := sharedauth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		return nil, err
	}
	app.Tokens = tokens

	if err := app.buildRepos(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Store = store

	completer, err := BuildCompleter(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.LLM = completer

	app.buildServices()
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Tokens:          app.Tokens,
		Health:          app.Health,
		UserHandler:     app.UsersHandler,
		ResumeHandler:   app.ResumesHandler,
		AnalysisHandler: app.AnalysisHandler,
		GoogleAuth:      app.GoogleAuth,
	})
	return app, nil
}

// Close releases database connections.
func (a *App) Close(ctx context.Context) {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			telemetry.Warn("bootstrap.db_close_failed", map[string]any{"error": err})
		}
		a.DB = nil
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			telemetry.Warn("bootstrap.mongo_close_failed", map[string]any{"error": err})
		}
		a.Mongo = nil
	}
}

func (a *App) buildRepos(ctx context.Context) error {
	switch a.Config.DBDriver {
	case config.DriverPostgres:
		sqlDB, err := db.Connect(ctx, a.Config.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return err
		}
		a.DB = sqlDB
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		a.UsersRepo = &users.PGRepo{DB: sqlDB}
		a.ResumesRepo = &resumes.PGRepo{DB: sqlDB}
		a.Health.Register("postgres", sqlDB.PingContext)
	case config.DriverMongo:
		client, database, err := mongodb.Connect(ctx, a.Config.DatabaseURL, a.Config.MongoDatabase)
		if err != nil {
			return err
		}
		a.Mongo = client
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			return err
		}
		a.UsersRepo = users.NewMongoRepo(database)
		a.ResumesRepo = resumes.NewMongoRepo(database)
		a.Health.Register("mongo", func(ctx context.Context) error { return client.Ping(ctx, nil) })
	case config.DriverMemory:
		telemetry.Warn("bootstrap.memory_store", map[string]any{"message": "data is not persisted"})
		a.UsersRepo = users.NewMemoryRepo()
		a.ResumesRepo = resumes.NewMemoryRepo()
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", a.Config.DBDriver)
	}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildCompleter returns the configured LLM provider wrapped with metrics and logging.
func BuildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		return nil, errors.New("LLM_API_KEY is required")
	}
	var next llm.Completer
	switch cfg.LLMProvider {
	case "gemini":
		client, err := gemini.New(ctx, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		next = client
	default:
		client, err := openai.NewPromptClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		next = client
	}
	return llm.Instrumented{Next: next, Provider: cfg.LLMProvider, Model: cfg.LLMModel}, nil
}

func (a *App) buildServices() {
	verifier := googleauth.NewGoogleVerifier(a.Config.GoogleClientID)

	a.UsersService = users.NewService(a.UsersRepo, a.Tokens, verifier)
	a.ResumesService = resumes.NewService(a.ResumesRepo)
	a.AnalysisService = analysis.NewService(ai.NewClient(a.LLM), a.Store, a.ResumesService)
	a.GoogleAuth = googleauth.NewGoogleService(
		a.UsersService,
		a.Config.GoogleClientID,
		a.Config.GoogleClientSecret,
		a.Config.GoogleRedirectURL,
		a.Config.UIRedirectURL,
	)

	a.UsersHandler = users.NewHandler(a.UsersService)
	a.ResumesHandler = resumes.NewHandler(a.ResumesService)
	a.AnalysisHandler = analysis.NewHandler(a.AnalysisService)
}
