package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/just-nibble/git-digest/internal/digest"
	"github.com/just-nibble/git-digest/internal/domain"
	"github.com/just-nibble/git-digest/internal/generator"
	"github.com/just-nibble/git-digest/internal/http/handlers"
	"github.com/just-nibble/git-digest/internal/notify"
	"github.com/just-nibble/git-digest/internal/repository"
	"github.com/just-nibble/git-digest/internal/routes"
	"github.com/just-nibble/git-digest/internal/scheduler"
	"github.com/just-nibble/git-digest/internal/seeder"
	"github.com/just-nibble/git-digest/internal/storage"
	"github.com/just-nibble/git-digest/internal/usecases"
	"github.com/just-nibble/git-digest/pkg/config"
	"github.com/just-nibble/git-digest/pkg/git"
	"github.com/just-nibble/git-digest/pkg/log"
	"github.com/rs/zerolog"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Log.Level, cfg.Log.Format)
	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("digester stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Initialize the database
	db, err := storage.InitDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}

	bindingStore := repository.NewGormBindingStore(db)
	commitmentStore := repository.NewGormCommitmentStore(db)
	feedStore := repository.NewGormFeedStore(db)
	projectStore := repository.NewGormProjectStore(db)
	subscriptionStore := repository.NewGormSubscriptionStore(db)

	gc := git.NewGitHubClient(cfg.GitHub.BaseURL, cfg.GitHub.Token, cfg.GitHub.RequestTimeout)
	classifier := usecases.NewCommitClassifier(gc, commitmentStore, logger.With().Str("component", "classifier").Logger(),
		usecases.WithWorkers(cfg.Classifier.Workers),
		usecases.WithRetry(cfg.Classifier.RetryAttempts, cfg.Classifier.RetryBackoff),
		usecases.WithSkipExisting(cfg.Classifier.SkipExisting),
	)

	var gen digest.Generator
	if cfg.Digest.OpenAIAPIKey != "" {
		gen = generator.NewOpenAIGenerator(cfg.Digest.OpenAIAPIKey, cfg.Digest.OpenAIModel)
	} else {
		logger.Warn().Msg("no OpenAI key configured, announcements fall back to changelogs")
	}
	policy := digest.PolicyFallback
	if cfg.Digest.StrictAnnouncement {
		policy = digest.PolicyStrict
	}
	announcer := digest.NewAnnouncer(gen, cfg.Digest.GenerateTimeout, policy, logger.With().Str("component", "announcer").Logger())

	registry, err := newRegistry(cfg, logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(registry, cfg.Notify.Concurrency, cfg.Notify.DispatchTimeout,
		logger.With().Str("component", "notify").Logger())

	feeds := usecases.NewFeedUsecase(feedStore, subscriptionStore, projectStore, announcer, dispatcher,
		logger.With().Str("component", "feeds").Logger())
	push := usecases.NewPushUsecase(usecases.NewBindingResolver(bindingStore), classifier, projectStore, feeds,
		logger.With().Str("component", "push").Logger(), usecases.WithScheduledDigests(cfg.Digest.SchedulerEnabled))

	// Seed the database if necessary
	if _, err := seeder.SeedDatabase(ctx, projectStore, subscriptionStore, cfg.Seed, logger); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	if cfg.Digest.SchedulerEnabled {
		sched := scheduler.NewScheduler(projectStore, commitmentStore, feeds, logger.With().Str("component", "scheduler").Logger())
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// Set up HTTP routes
	router := routes.NewRouter(routes.Handlers{
		Webhook:    handlers.NewWebhookHandler(push, cfg.GitHub.WebhookSecret, cfg.Server.PushTimeout, logger.With().Str("component", "webhook").Logger()),
		Commitment: handlers.NewCommitmentHandler(usecases.NewCommitmentUsecase(commitmentStore)),
		Feed:       handlers.NewFeedHandler(feeds),
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRegistry(cfg *config.Config, logger zerolog.Logger) (*notify.Registry, error) {
	registry := notify.NewRegistry()

	if cfg.SMTP.Host != "" {
		email, err := notify.NewEmailSender(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("email sender: %w", err)
		}
		if err := registry.Register(domain.ChannelEmail, email, cfg.Notify.EmailRate); err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("SMTP host not configured, email channel disabled")
	}

	if err := registry.Register(domain.ChannelSlack, notify.NewSlackSender(cfg.Notify.DispatchTimeout), cfg.Notify.SlackRate); err != nil {
		return nil, err
	}

	if cfg.Telegram.Token != "" {
		telegram, err := notify.NewTelegramSender(cfg.Telegram.Token)
		if err != nil {
			return nil, fmt.Errorf("telegram sender: %w", err)
		}
		if err := registry.Register(domain.ChannelTelegram, telegram, cfg.Notify.TelegramRate); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
