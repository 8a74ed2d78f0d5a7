package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/api"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/client"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/config"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/db"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/imagestore"
	"github.com/django-nerd/frontend-repo-g4f5619x-ui4kqg/internal/web"
)

const usage = `Usage: barang <web|api> [flags]

Commands:
  web    serve the item entry form
  api    serve the items backend the form posts to

Run "barang <command> -h" for the command's flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "web":
		os.Exit(cmdWeb(cfg, os.Args[2:]))
	case "api":
		os.Exit(cmdAPI(cfg, os.Args[2:]))
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n%s", os.Args[1], usage)
		os.Exit(1)
	}
}

// parseFlags parses args into fs and normalizes cfg afterwards. It returns
// false with the exit code when the command should stop.
func parseFlags(fs *flag.FlagSet, cfg *config.Config, args []string) (bool, int) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, 0
		}
		return false, 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		return false, 1
	}
	if err := cfg.Normalize(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return false, 1
	}
	return true, 0
}

func cmdWeb(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "")
	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "")
	fs.StringVar(&cfg.WebAddr, "addr", cfg.WebAddr, "")
	fs.StringVar(&cfg.WebAddr, "a", cfg.WebAddr, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, `Usage: barang web [flags]

Flags:
  -b, -backend <url>      backend origin items are posted to (default: %s)
  -a, -addr <host:port>   listen address (default: %s)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment: BACKEND_URL (or VITE_BACKEND_URL), WEB_ADDR, MAX_UPLOAD_BYTES, LOG_PATH.
`, config.DefaultBackendURL, config.DefaultWebAddr)
	}

	if ok, code := parseFlags(fs, cfg, args); !ok {
		return code
	}

	closeLog, err := setupLogger("web", cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	backend := client.New(cfg.BackendURL)
	slog.Info("posting items to backend", "url", backend.ItemsURL())

	router, err := web.NewRouter(web.Options{
		BackendURL:     cfg.BackendURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, backend)
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		return 1
	}

	return serve(cfg.WebAddr, web.LoggingMiddleware(router))
}

func cmdAPI(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.APIAddr, "addr", cfg.APIAddr, "")
	fs.StringVar(&cfg.APIAddr, "a", cfg.APIAddr, "")
	fs.StringVar(&cfg.Images.Driver, "images", cfg.Images.Driver, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, `Usage: barang api [flags]

Flags:
  -d, -db <path>          SQLite database path (default: %s)
  -a, -addr <host:port>   listen address (default: %s)
  -images <sqlite|s3>     where uploaded images are kept (default: sqlite)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment: DB_PATH, API_ADDR, MAX_UPLOAD_BYTES, CORS_ORIGIN, IMAGE_STORE,
S3_ENDPOINT, S3_REGION, S3_BUCKET, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, LOG_PATH.
`, config.DefaultDBPath, config.DefaultAPIAddr)
	}

	if ok, code := parseFlags(fs, cfg, args); !ok {
		return code
	}

	closeLog, err := setupLogger("api", cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		return 1
	}
	slog.Info("database ready", "path", cfg.DBPath)

	images, err := openImageStore(context.Background(), cfg.Images, database)
	if err != nil {
		slog.Error("failed to set up image store", "driver", cfg.Images.Driver, "error", err)
		return 1
	}

	router := api.NewRouter(database, images, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigin:     cfg.CORSOrigin,
	})

	return serve(cfg.APIAddr, api.LoggingMiddleware(router))
}

// openImageStore returns the configured image backend, creating the bucket
// when S3 is selected.
func openImageStore(ctx context.Context, cfg config.ImageStore, database *sql.DB) (imagestore.Store, error) {
	if cfg.Driver != config.ImageStoreS3 {
		slog.Info("storing images in database")
		return &imagestore.SQLite{DB: database}, nil
	}

	store, err := imagestore.NewS3(ctx, imagestore.S3Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
		UsePathStyle:    cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	slog.Info("storing images in bucket", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
	return store, nil
}

// serve runs handler on addr until SIGINT/SIGTERM, then shuts down gracefully.
func serve(addr string, handler http.Handler) int {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return 1
	}

	slog.Info("server stopped")
	return 0
}
