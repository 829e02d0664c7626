package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boicualexandru/scraping-calendis/internal/adapters/configstore"
	"github.com/boicualexandru/scraping-calendis/internal/adapters/database"
	"github.com/boicualexandru/scraping-calendis/internal/adapters/providers/scheduling"
	"github.com/boicualexandru/scraping-calendis/internal/application/services"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	"github.com/boicualexandru/scraping-calendis/internal/domain/repositories"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/clients/postgres"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/clients/redis"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/notifications"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/observability"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
	"github.com/boicualexandru/scraping-calendis/pkg/retry"
	"github.com/boicualexandru/scraping-calendis/pkg/secrets"
)

func main() {
	// Pull credentials from Vault before reading the environment
	vaultCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	vaultResult, err := secrets.ApplyCredentials(vaultCtx, secrets.LoadVaultConfigFromEnv())
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load credentials from Vault")
	}
	if vaultResult.Enabled {
		log.Info().
			Str("path", vaultResult.Path).
			Strs("loaded", vaultResult.Loaded).
			Strs("skipped", vaultResult.Skipped).
			Msg("Vault credentials applied")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Scrape run failed")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", cfg.Env).
		Str("notifier", cfg.Notifier.Channel).
		Str("config_store", cfg.ConfigStore.Backend).
		Msg("Starting calendis scraper")

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.EnableLogExport(cfg.OTEL.ServiceName)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	store, closeStore, err := newConfigStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if loader, ok := store.(providers.StateLoader); ok {
		state, err := loader.LoadState(ctx)
		if err != nil {
			return fmt.Errorf("loading persisted state: %w", err)
		}
		cfg = cfg.WithStoredState(state.SessionToken, state.Enabled)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	var notificationLog repositories.NotificationRepository
	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database, retry.DeliveryConfig())
		if err != nil {
			log.Warn().Err(err).Msg("Notification log unavailable, continuing without it")
		} else {
			defer pgClient.Close()
			adapter := database.NewNotificationLogAdapter(pgClient)
			if err := adapter.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Notification log unavailable, continuing without it")
			} else {
				notificationLog = adapter
			}
		}
	}

	availability := services.NewAvailabilityService(scheduling.NewCalendisAdapter(cfg.Calendis), store, metrics)
	notificationService := services.NewNotificationService(notifier, notificationLog, retry.DeliveryConfig(), metrics)
	scraper := services.NewScrapeService(services.NewDateSelector(), availability, notificationService, store, metrics)

	return scraper.Run(ctx, cfg)
}

func newConfigStore(ctx context.Context, cfg *config.Config) (providers.ConfigStore, func(), error) {
	switch cfg.ConfigStore.Backend {
	case config.StoreGitHub:
		return configstore.NewGitHubVariablesStore(cfg.GitHub), func() {}, nil
	default:
		client, err := redis.NewClient(ctx, &cfg.Redis, retry.DeliveryConfig())
		if err != nil {
			return nil, nil, err
		}
		return configstore.NewRedisStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	}
}

func newNotifier(cfg *config.Config) (providers.Notifier, error) {
	switch cfg.Notifier.Channel {
	case config.ChannelWhatsApp:
		return notifications.NewWhatsAppCloudSender(cfg.Notifier)
	default:
		return notifications.NewTelegramSender(cfg.Notifier)
	}
}
