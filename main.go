package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mwhited/robocatalog/catalog"
	"github.com/mwhited/robocatalog/config"
	"github.com/mwhited/robocatalog/database"
	"github.com/mwhited/robocatalog/handlers"
	"github.com/mwhited/robocatalog/media"
	"github.com/mwhited/robocatalog/publish"
	"github.com/mwhited/robocatalog/repository"
	"github.com/mwhited/robocatalog/workers"

	"github.com/mwhited/robocatalog/export"
)

type app struct {
	cfg     config.Config
	db      *gorm.DB
	store   *media.LocalStorage
	catalog *catalog.Service
}

// setup loads configuration, opens the database, and prepares the
// storage tree. queue stays nil for the one-shot commands.
func setup(queue catalog.PhotoQueue) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	storagePaths := []string{cfg.PhotoStoragePath, cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		if err := os.MkdirAll(p, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		return nil, err
	}
	if err := database.SeedCategories(db); err != nil {
		return nil, err
	}

	store, err := media.NewLocalStorage(cfg.PhotoStoragePath, database.DefaultCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	svc, err := catalog.NewService(db, store, queue)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, db: db, store: store, catalog: svc}, nil
}

func runServe() error {
	a, err := setup(nil)
	if err != nil {
		return err
	}

	log.Printf("Initializing photo processor worker pool (Workers: %d, Queue Size: %d)...", a.cfg.NumThumbnailWorkers, a.cfg.ThumbnailQueueSize)
	photoProcessor := workers.NewPhotoProcessor(a.cfg, repository.NewPhotoRepository(a.db), a.cfg.ThumbnailQueueSize, a.cfg.NumThumbnailWorkers)

	// rebuild the service with the worker queue attached
	svc, err := catalog.NewService(a.db, a.store, photoProcessor)
	if err != nil {
		return err
	}

	log.Printf("Using database: %s", a.cfg.DatabasePath)
	log.Printf("Storing photos in: %s", a.cfg.PhotoStoragePath)
	log.Printf("Storing thumbnails in: %s", a.cfg.ThumbnailsPath)
	log.Printf("Thumbnail max size (longest side): %dpx", a.cfg.ThumbnailMaxSize)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	robotHandler := &handlers.RobotHandler{Catalog: svc}
	photoHandler := &handlers.PhotoHandler{
		Catalog:        svc,
		MaxUploadBytes: a.cfg.MaxUploadBytes,
		UploadTmpDir:   filepath.Join(os.TempDir(), "robocatalog-uploads"),
	}
	statsHandler := &handlers.StatsHandler{Catalog: svc}

	r.Route("/api", func(r chi.Router) {
		r.Route("/robots", func(r chi.Router) {
			r.Post("/", robotHandler.CreateRobot)
			r.Get("/", robotHandler.ListRobots)
			r.Route("/{robot_id}", func(r chi.Router) {
				r.Get("/", robotHandler.GetRobot)
				r.Get("/photos", robotHandler.ListRobotPhotos)
			})
		})

		r.Route("/photos", func(r chi.Router) {
			r.Get("/", photoHandler.SearchPhotos)
			r.Post("/", photoHandler.UploadPhoto)
			r.Route("/{photo_id}", func(r chi.Router) {
				r.Post("/tags", photoHandler.AddTag)
				r.Get("/file", photoHandler.ServePhotoFile)
			})
		})

		r.Get("/statistics", statsHandler.GetStatistics)

		thumbnailSubDir := filepath.Base(a.cfg.ThumbnailsPath)
		r.Get(fmt.Sprintf("/%s/*", thumbnailSubDir), handlers.AssetServer(a.cfg.PhotoStoragePath, thumbnailSubDir))
		log.Printf("Registered thumbnail server at /%s/*", thumbnailSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return server.ListenAndServe()
}

func buildTarget(cfg config.PublishConfig) (publish.Target, error) {
	switch cfg.Target {
	case "s3":
		return publish.NewS3Target(cfg)
	case "sftp":
		return publish.NewSFTPTarget(cfg)
	default:
		return nil, fmt.Errorf("unknown publish target '%s' (want s3 or sftp)", cfg.Target)
	}
}

func runPublish() error {
	a, err := setup(nil)
	if err != nil {
		return err
	}

	target, err := buildTarget(a.cfg.Publish)
	if err != nil {
		return err
	}
	defer target.Close()

	publisher := &publish.Publisher{
		Photos:      repository.NewPhotoRepository(a.db),
		Target:      target,
		MappingPath: a.cfg.PhotoURLMapPath,
	}
	summary, err := publisher.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d photos (%d skipped, %d failed); mapping written to %s\n",
		summary.Uploaded, summary.Skipped, summary.Failed, a.cfg.PhotoURLMapPath)
	return nil
}

func runExportCatalog(outputPath string) error {
	a, err := setup(nil)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = a.cfg.CatalogExportPath
	}
	if err := a.catalog.ExportCatalog(outputPath); err != nil {
		return err
	}
	fmt.Printf("Catalog exported to %s\n", outputPath)
	return nil
}

func runExportAPI() error {
	a, err := setup(nil)
	if err != nil {
		return err
	}
	photoURLs, err := publish.ReadURLMapping(a.cfg.PhotoURLMapPath)
	if err != nil {
		return fmt.Errorf("run the publish command first: %w", err)
	}
	return export.GenerateStaticAPI(a.catalog, photoURLs, a.cfg.StaticAPIPath)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "robocatalog",
		Short: "robot photo catalog server and batch tools",
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "run the catalog HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "publish",
		Short: "upload all photos to object storage and write the URL mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish()
		},
	})

	exportCatalogCmd := &cobra.Command{
		Use:   "export-catalog [output]",
		Short: "write the text catalog report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := ""
			if len(args) == 1 {
				out = args[0]
			}
			return runExportCatalog(out)
		},
	}
	rootCmd.AddCommand(exportCatalogCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "export-api",
		Short: "generate the static marketplace JSON from the catalog and URL mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportAPI()
		},
	})

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
