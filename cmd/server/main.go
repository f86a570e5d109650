package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Skufu/GlucoRisk/internal/logging"
	"github.com/Skufu/GlucoRisk/internal/metrics"
	"github.com/Skufu/GlucoRisk/internal/model"
	"github.com/Skufu/GlucoRisk/internal/store"
)

const serviceName = "glucorisk"

type Config struct {
	Port        string
	DatabaseURL string
	EnableDB    bool
	ScalerPath  string
	ModelPath   string
	WatchModels bool
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, _, err := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	// No assessment is ever served without both artifacts.
	paths := model.Paths{Scaler: cfg.ScalerPath, Classifier: cfg.ModelPath}
	pipeline, err := model.LoadPipeline(paths)
	if err != nil {
		logger.Fatal("model files not found or invalid; ensure the scaler and classifier artifacts exist",
			zap.Error(err))
	}
	logger.Info("model loaded", zap.String("scaler", paths.Scaler), zap.String("classifier", paths.Classifier))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	current := model.NewCurrent(pipeline)
	a := &api{
		models:      current,
		paths:       paths,
		metrics:     m,
		logger:      logger,
		corsOrigins: cfg.CORSOrigins,
		now:         time.Now,
	}

	if cfg.EnableDB {
		assessmentLog, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer assessmentLog.Close()

		if err := assessmentLog.EnsureSchema(ctx); err != nil {
			logger.Fatal("database schema setup failed", zap.Error(err))
		}
		a.db = assessmentLog
		a.recorder = assessmentLog
	}

	if cfg.WatchModels {
		watcher, err := model.NewWatcher(paths, current, logger, m.ObserveReload)
		if err != nil {
			logger.Fatal("artifact watcher failed", zap.Error(err))
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	router := setupRouter(a)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("addr", server.Addr))
	waitForShutdown(server, logger)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		ScalerPath:  getEnv("SCALER_PATH", "models/scaler.json"),
		ModelPath:   getEnv("MODEL_PATH", "models/model.json"),
		WatchModels: strings.EqualFold(getEnv("MODEL_WATCH", "false"), "true"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
