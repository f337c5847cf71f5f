package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/exports"
	"resume-builder-backend/internal/outreach"
	"resume-builder-backend/internal/resumes"
	"resume-builder-backend/internal/shared/config"
	"resume-builder-backend/internal/shared/server"
	"resume-builder-backend/internal/shared/storage/db"
	"resume-builder-backend/internal/shared/storage/object"
	localstore "resume-builder-backend/internal/shared/storage/object/local"
	s3store "resume-builder-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	ResumesRepo     resumes.Repo
	ResumesService  *resumes.Service
	OutreachService *outreach.Service
	ExportsService  *exports.Service

	ResumesHandler  *resumes.Handler
	OutreachHandler *outreach.Handler
	ExportsHandler  *exports.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mailer, err := buildMailer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	directory, err := outreach.NewDirectory()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if app.DB != nil {
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		app.ResumesRepo = resumes.NewMemoryRepo()
	}

	app.ResumesService = resumes.NewService(app.ResumesRepo)
	app.OutreachService = outreach.NewService(
		app.ResumesService,
		directory,
		mailer,
		cfg.OutreachFrom,
		cfg.OutreachConcurrency,
		cfg.OutreachTargetTimeout,
	)
	app.ExportsService = exports.NewService(app.ResumesService, app.Store)

	app.ResumesHandler = resumes.NewHandler(app.ResumesService)
	app.OutreachHandler = outreach.NewHandler(app.OutreachService)
	app.ExportsHandler = exports.NewHandler(app.ExportsService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		ResumesHandler:  app.ResumesHandler,
		OutreachHandler: app.OutreachHandler,
		ExportsHandler:  app.ExportsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildMailer(ctx context.Context, cfg config.Config) (outreach.Mailer, error) {
	switch cfg.Mailer {
	case "ses":
		return outreach.NewSESMailer(ctx, cfg.AWSRegion)
	default:
		return outreach.LogMailer{}, nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
