package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"tienda/internal/db"
	"tienda/internal/inventory"
	"tienda/internal/ratelimiter"
	"tienda/internal/realtime"
	"tienda/internal/store"
	filestore "tienda/internal/store/file"
	fsstore "tienda/internal/store/firestore"
	pgstore "tienda/internal/store/postgres"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/api/option"
)

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
	}
	return fallback
}

func loadRateLimiterConfig() ratelimiter.Config {
	enabled := false
	if v, ok := os.LookupEnv("RATE_LIMITER_ENABLED"); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			enabled = parsed
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: envIntOr("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// newLogger builds a zap console logger with colored levels.
func newLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:           envOr("ADDR", ":8080"),
		env:            envOr("ENV", "development"),
		catalogBackend: envOr("CATALOG_BACKEND", "file"),
		cartBackend:    envOr("CART_BACKEND", "file"),
		dataDir:        envOr("DATA_DIR", "data"),
		db: dbConfig{
			addr:         os.Getenv("DB_ADDR"),
			maxOpenConns: envIntOr("DB_MAX_OPEN_CONNS", 25),
			maxIdleTime:  envOr("DB_MAX_IDLE_TIME", "15m"),
		},
		firestore: firestoreConfig{
			projectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
			credentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		},
		rateLimiter: loadRateLimiterConfig(),
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if err := os.MkdirAll(cfg.dataDir, 0o755); err != nil {
		logger.Fatalw("creating data dir", "dir", cfg.dataDir, "error", err)
	}

	st, cleanup, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalw("building storage", "error", err)
	}
	defer cleanup()

	bus := realtime.NewBus()
	coordinator := inventory.NewCoordinator(st, bus, logger)

	hub := realtime.NewHub(coordinator, logger)
	bus.Subscribe(hub.HandleEvent)
	bus.Subscribe(func(e realtime.Event) {
		logger.Infow("state committed", "kind", e.Kind)
	})
	go hub.Run()

	app := &application{
		config:      cfg,
		coordinator: coordinator,
		hub:         hub,
		logger:      logger,
		rateLimiter: ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, cfg.rateLimiter.TimeFrame),
	}

	logger.Infow("storage configured", "catalog", cfg.catalogBackend, "carts", cfg.cartBackend)

	if err := app.run(app.mount()); err != nil {
		logger.Fatalw("server stopped with error", "error", err)
	}
}

// buildStorage picks the backends from configuration only; nothing inspects
// data shape at runtime to decide where state lives.
func buildStorage(ctx context.Context, cfg config, logger *zap.SugaredLogger) (store.Storage, func(), error) {
	var st store.Storage
	cleanup := func() {}

	switch cfg.catalogBackend {
	case "postgres":
		pool, err := db.New(cfg.db.addr, int32(cfg.db.maxOpenConns), cfg.db.maxIdleTime)
		if err != nil {
			return st, cleanup, fmt.Errorf("postgres pool: %w", err)
		}
		cleanup = pool.Close
		st.Catalog = pgstore.NewCatalogStore(pool)
		logger.Infow("database connection pool established")
	case "file":
		cat, err := filestore.NewCatalogStore(cfg.dataDir)
		if err != nil {
			return st, cleanup, fmt.Errorf("file catalog: %w", err)
		}
		st.Catalog = cat
	default:
		return st, cleanup, fmt.Errorf("unknown CATALOG_BACKEND %q", cfg.catalogBackend)
	}

	switch cfg.cartBackend {
	case "firestore":
		var opts []option.ClientOption
		if cfg.firestore.credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.firestore.credentialsFile))
		}
		client, err := firestore.NewClient(ctx, cfg.firestore.projectID, opts...)
		if err != nil {
			return st, cleanup, fmt.Errorf("firestore client: %w", err)
		}
		prevCleanup := cleanup
		cleanup = func() {
			client.Close()
			prevCleanup()
		}
		st.Carts = fsstore.NewCartRepository(client)
		logger.Infow("firestore connected", "project", cfg.firestore.projectID)
	case "file":
		carts, err := filestore.NewCartRepository(cfg.dataDir)
		if err != nil {
			return st, cleanup, fmt.Errorf("file carts: %w", err)
		}
		st.Carts = carts
	default:
		return st, cleanup, fmt.Errorf("unknown CART_BACKEND %q", cfg.cartBackend)
	}

	return st, cleanup, nil
}
