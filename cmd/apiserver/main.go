// API server entry point for MedCode-Intelligence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/MedCode-Intelligence/internal/application/coding"
	"github.com/turtacn/MedCode-Intelligence/internal/config"
	"github.com/turtacn/MedCode-Intelligence/internal/domain/terminology"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/assets"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedCode-Intelligence/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/MedCode-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MedCode-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MedCode-Intelligence/internal/intelligence/disease_ner"
)

// Build-time variable injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "config file path (default: MEDCODE_* environment)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.LogConfig(cfg.Log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting MedCode-Intelligence API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("assets_dir", cfg.Dictionary.AssetsDir))

	// Metrics are optional; when disabled every recorder stays nil and the
	// /metrics route is not registered.
	var collector prometheus.MetricsCollector
	var appMetrics *prometheus.AppMetrics
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			ConstLabels:          map[string]string{"service": "apiserver"},
			EnableGoMetrics:      true,
			EnableProcessMetrics: true,
		}, logger)
		if err != nil {
			logger.Fatal("metrics setup failed", logging.Err(err))
		}
		appMetrics = prometheus.NewAppMetrics(collector)
	}

	store, err := terminology.NewStore(assets.NewLoader(cfg.Dictionary.AssetsDir, logger))
	if err != nil {
		logger.Fatal("dictionary load failed", logging.Err(err))
	}
	logger.Info("dictionary loaded",
		logging.Int("terms", store.NumTerms()),
		logging.Int("concepts", store.NumConcepts()))
	prometheus.SetDictionarySize(appMetrics, store.NumTerms(), store.NumConcepts())

	tagger, err := disease_ner.NewHTTPTagger(disease_ner.TaggerConfig{
		Endpoint: cfg.Tagger.Endpoint,
		Model:    cfg.Tagger.Model,
		Timeout:  cfg.Tagger.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("tagger setup failed", logging.Err(err))
	}
	extractor, err := disease_ner.NewExtractor(tagger, cfg.Tagger.Label, logger)
	if err != nil {
		logger.Fatal("extractor setup failed", logging.Err(err))
	}

	// The HTTP API codes submitted text only; PDF tooling stays unwired here.
	svc, err := coding.NewService(store, extractor, nil, nil, appMetrics, logger)
	if err != nil {
		logger.Fatal("coding service setup failed", logging.Err(err))
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		CodingHandler: handlers.NewCodingHandler(svc, appMetrics, cfg.Server.MaxBodySize, logger),
		HealthHandler: handlers.NewHealthHandler(version, appMetrics,
			handlers.NewChecker(handlers.CheckerDictionary, dictionaryCheck(store)),
			handlers.NewChecker(handlers.CheckerTagger, tagger.Healthy),
		),
		Logger:           logger,
		AppMetrics:       appMetrics,
		MetricsCollector: collector,
	})

	server := httpapi.NewServer(cfg.Server, router, logger)

	// Hot log-level reload while the server runs.
	if *configPath != "" {
		config.Watch(*configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("log level updated", logging.String("level", next.Log.Level))
			}
		})
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("http server failed", logging.Err(err))
		}
		return
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("shutdown error", logging.Err(err))
	}
	logger.Info("server stopped")
}

// loadConfig prefers an explicit file and falls back to MEDCODE_* environment
// variables with platform defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
