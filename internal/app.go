package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-service/internal/adapters/cache"
	listings_api_client "marketplace-service/internal/adapters/listings_api_client"
	logger_adapter "marketplace-service/internal/adapters/logger"
	"marketplace-service/internal/adapters/rest"
	"marketplace-service/internal/adapters/static_fixture"
	"marketplace-service/internal/configs"
	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/pipeline"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/usecase"
	fluentlogger "marketplace-service/pkg/fluent_logger"

	"github.com/fluent/fluent-logger-golang/fluent"
)

type App struct {
	config      *configs.AppConfig
	apiServer   *rest.Server
	cache       *cache.CachedListingSource
	coordinator *usecase.SearchCoordinator

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
	baseLogger   port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. ИСТОЧНИК ОБЪЯВЛЕНИЙ ---
	var source port.ListingSource
	switch appConfig.ListingsAPI.DataSource {
	case configs.DataSourceStatic:
		staticSource, err := static_fixture.NewStaticListingSource()
		if err != nil {
			appLogger.Error("Failed to load static listings", err, nil)
			return nil, fmt.Errorf("failed to load static listings: %w", err)
		}
		appLogger.Warn("Serving listings from the embedded dataset", port.Fields{"listings": staticSource.Len()})
		source = staticSource
	default:
		source = listings_api_client.NewListingsAPIClient(appConfig.ListingsAPI.BaseURL, appConfig.ListingsAPI.Timeout)
		appLogger.Info("Listings API client configured", port.Fields{
			"base_url": appConfig.ListingsAPI.BaseURL,
			"timeout":  appConfig.ListingsAPI.Timeout.String(),
		})
	}

	var cachedSource *cache.CachedListingSource
	if appConfig.Cache.Enabled {
		var remote cache.RemoteStore
		if len(appConfig.Cache.MemcachedHosts) > 0 {
			remote = cache.NewMemcachedStore(appConfig.AppName, appConfig.Cache.MemcachedHosts...)
			appLogger.Info("Memcached cache level enabled", port.Fields{"hosts": appConfig.Cache.MemcachedHosts})
		}
		cachedSource = cache.NewCachedListingSource(source, cache.TTLs{
			Properties: appConfig.Cache.PropertiesTTL,
			Featured:   appConfig.Cache.FeaturedTTL,
			Detail:     appConfig.Cache.DetailTTL,
			Stats:      appConfig.Cache.StatsTTL,
			Types:      appConfig.Cache.TypesTTL,
		}, appConfig.Cache.MaxItems, remote)
		source = cachedSource
	}

	// --- 4. ПАЙПЛАЙН И USE CASES ---
	translator := pipeline.NewCriteriaTranslator(appConfig.Pagination.DefaultLimit, appConfig.Pagination.MaxLimit)
	normalizer := pipeline.NewListingNormalizer(pipeline.NormalizerConfig{
		Locale:              appConfig.Display.Locale,
		DefaultCurrency:     appConfig.Display.DefaultCurrency,
		SupportedCurrencies: appConfig.Display.SupportedCurrencies,
		PlaceholderImage:    appConfig.Display.PlaceholderImage,
		WhatsAppBaseURL:     appConfig.Display.WhatsAppBaseURL,
		WhatsAppMessage:     appConfig.Display.WhatsAppMessage,
	})
	refiner := pipeline.NewLocalRefiner()

	searchUseCase := usecase.NewSearchListingsUseCase(source, translator, normalizer, refiner)
	coordinator := usecase.NewSearchCoordinator(searchUseCase, appConfig.Session.TTL)

	apiHandlers := rest.NewPropertyHandlers(
		coordinator,
		usecase.NewGetListingsUseCase(source, translator, normalizer),
		usecase.NewGetFeaturedListingsUseCase(source, translator, normalizer),
		usecase.NewGetListingDetailsUseCase(source, normalizer),
		usecase.NewGetPropertyTypesUseCase(source),
		usecase.NewGetPropertyStatsUseCase(source),
		usecase.NewGetFilterOptionsUseCase(),
	)
	apiServer := rest.NewServer(rest.ServerConfig{
		Port:           appConfig.Rest.PORT,
		AllowedOrigins: appConfig.Rest.AllowedOrigins,
		RateLimit:      appConfig.Rest.RateLimit,
		RateBurst:      appConfig.Rest.RateBurst,

		TrustProxyHeaders: appConfig.Rest.TrustProxyHeaders,
	}, apiHandlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return &App{
		config:       appConfig,
		apiServer:    apiServer,
		cache:        cachedSource,
		coordinator:  coordinator,
		fluentClient: fluentClient,
		logger:       appLogger,
		baseLogger:   baseLogger,
	}, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	appCtx = contextkeys.ContextWithLogger(appCtx, a.baseLogger)

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		if a.cache != nil {
			a.cache.Stop()
			a.logger.Info("Response cache stopped.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	go a.coordinator.Run(appCtx, a.config.Session.PruneInterval)

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
		runErr = err
	}

	// Останавливаем фоновые задачи до остановки сервера
	cancelApp()

	return runErr
}
