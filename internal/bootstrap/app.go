package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"pixology-backend/internal/artifacts"
	googleauth "pixology-backend/internal/auth"
	"pixology-backend/internal/generations"
	"pixology-backend/internal/imagegen"
	"pixology-backend/internal/imagegen/gemini"
	openai "pixology-backend/internal/imagegen/openai"
	"pixology-backend/internal/quota"
	"pixology-backend/internal/shared/config"
	"pixology-backend/internal/shared/server"
	"pixology-backend/internal/shared/storage/db"
	"pixology-backend/internal/shared/storage/object"
	localstore "pixology-backend/internal/shared/storage/object/local"
	s3store "pixology-backend/internal/shared/storage/object/s3"
	"pixology-backend/internal/users"
)

// App holds shared dependencies built once at startup.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Objects     object.ObjectStore
	ImageClient imagegen.Client

	GenerationsRepo generations.Repo
	UsersRepo       users.Repo

	Quota              *quota.Gate
	ArtifactsStore     *artifacts.Store
	GenerationsService *generations.Service
	UsersService       *users.Service

	GenerationsHandler *generations.Handler
	QuotaHandler       *quota.Handler
	ArtifactsHandler   *artifacts.Handler
	UsersHandler       *users.Handler
	GoogleAuth         *googleauth.GoogleService
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

	objects, err := buildObjects(ctx, cfg)
	if err != nil {
		return nil, err
	}

	imageClient, err := buildImageClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Objects:     objects,
		ImageClient: imageClient,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		GenerationHandler: app.GenerationsHandler,
		QuotaHandler:      app.QuotaHandler,
		ArtifactHandler:   app.ArtifactsHandler,
		UserHandler:       app.UsersHandler,
		GoogleAuth:        app.GoogleAuth,
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

	return sqlDB, nil
}

func buildObjects(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicBaseURL)
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func buildImageClient(ctx context.Context, cfg config.Config) (imagegen.Client, error) {
	switch cfg.ImageProvider {
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.ImageModel, os.Getenv("OPENAI_BASE_URL"))
	case "placeholder":
		return imagegen.PlaceholderClient{}, nil
	default:
		return gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), cfg.ImageModel)
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

func buildServices(app *App) {
	var generationRepo generations.Repo
	var userRepo users.Repo

	if app.DB != nil {
		generationRepo = &generations.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		generationRepo = generations.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	gate := quota.NewGate(generationRepo, app.Config.QuotaDailyLimit)
	artifactStore := artifacts.NewStore(app.Objects)

	generationSvc := &generations.Service{
		Repo:          generationRepo,
		Quota:         gate,
		Client:        app.ImageClient,
		Artifacts:     artifactStore,
		DefaultWidth:  app.Config.DefaultWidth,
		DefaultHeight: app.Config.DefaultHeight,
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.GenerationsRepo = generationRepo
	app.UsersRepo = userRepo
	app.Quota = gate
	app.ArtifactsStore = artifactStore
	app.GenerationsService = generationSvc
	app.UsersService = userSvc
	app.GenerationsHandler = generations.NewHandler(generationSvc)
	app.QuotaHandler = quota.NewHandler(gate)
	app.ArtifactsHandler = artifacts.NewHandler(app.Objects)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc
}
