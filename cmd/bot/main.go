// Package main - точка входа Telegram-бота EcoHabit.
//
// Бот помогает школьникам отмечать экопривычки: каждый вечер присылает
// чек-лист, считает личную статистику, статистику класса и всей школы.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: реализация репозиториев, Telegram API, планировщик
// - Interface: разбор обновлений, роутер, liveness HTTP endpoint
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/config"

	// Application layer
	"github.com/ecohabit-hub/ecohabit-bot/internal/application/command"
	"github.com/ecohabit-hub/ecohabit-bot/internal/application/query"

	// Domain layer
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"

	// Infrastructure layer
	tgapi "github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/persistence/postgres"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/persistence/redis"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/scheduler"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/ecohabit-hub/ecohabit-bot/internal/interface/http"
	"github.com/ecohabit-hub/ecohabit-bot/internal/interface/telegram"

	// Packages
	"github.com/ecohabit-hub/ecohabit-bot/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting EcoHabit bot",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально, кэш школьной статистики)
	// ─────────────────────────────────────────────────────────────────────────
	var statsCache *redis.StatsCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}
		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, stats caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			statsCache = redis.NewStatsCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ И КАТАЛОГОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	checkinRepo := postgres.NewCheckinRepository(dbConn)

	catalogHabits := make([]habit.Habit, 0, len(cfg.Catalog.Habits))
	for _, h := range cfg.Catalog.Habits {
		catalogHabits = append(catalogHabits, habit.Habit{Key: h.Key, Title: h.Title})
	}
	catalog := habit.NewCatalog(catalogHabits)
	classes := user.NewClasses(cfg.Catalog.Classes)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	// Типизированный nil в интерфейсе не считается отключённым кэшем,
	// поэтому интерфейсные значения заполняются только при живом Redis.
	var invalidator command.StatsInvalidator
	var schoolCache query.SchoolStatsCache
	if statsCache != nil {
		invalidator = statsCache
		schoolCache = statsCache
	}

	registerUserCmd := command.NewRegisterUserHandler(userRepo)
	chooseClassCmd := command.NewChooseClassHandler(userRepo, classes)
	toggleHabitCmd := command.NewToggleHabitHandler(checkinRepo, catalog, invalidator)

	checkinSheetQuery := query.NewCheckinSheetHandler(userRepo, checkinRepo, catalog)
	myStatsQuery := query.NewMyStatsHandler(checkinRepo)
	classStatsQuery := query.NewClassStatsHandler(userRepo, checkinRepo)
	schoolStatsQuery := query.NewSchoolStatsHandler(checkinRepo, schoolCache, cfg.App.Location)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. СОЗДАНИЕ TELEGRAM BOT
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing Telegram bot...")

	clientConfig := tgapi.DefaultClientConfig(cfg.Telegram.Token)
	clientConfig.Logger = log
	clientConfig.Debug = cfg.App.Debug
	tgClient := tgapi.NewClient(clientConfig)

	router := telegram.NewRouter(tgClient, telegram.RouterDependencies{
		RegisterUser: registerUserCmd,
		ChooseClass:  chooseClassCmd,
		ToggleHabit:  toggleHabitCmd,
		CheckinSheet: checkinSheetQuery,
		MyStats:      myStatsQuery,
		ClassStats:   classStatsQuery,
		SchoolStats:  schoolStatsQuery,
		Catalog:      catalog,
		Classes:      cfg.Catalog.Classes,
		Location:     cfg.App.Location,
		Logger:       log,
	})

	botConfig := telegram.DefaultBotConfig()
	botConfig.PollingTimeout = int(cfg.Telegram.PollingTimeout.Seconds())
	botConfig.MaxConcurrentUpdates = cfg.Telegram.MaxConcurrentUpdates
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout
	botConfig.Logger = log

	bot, err := telegram.NewBot(botConfig, tgClient, router)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ПЛАНИРОВЩИК ВЕЧЕРНИХ НАПОМИНАНИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing scheduler...")

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	reminderSender := telegram.NewReminderSender(tgClient, catalog, cfg.Catalog.Classes, cfg.App.Location)
	reminderJob := jobs.NewDailyReminderJob(userRepo, checkinRepo, reminderSender, log, jobs.DailyReminderConfig{
		Enabled:     cfg.Reminder.Enabled,
		Timezone:    cfg.App.Location,
		Concurrency: cfg.Reminder.MaxConcurrentSends,
		Timeout:     cfg.Reminder.RunTimeout,
	})

	reminderCron := fmt.Sprintf("%d %d * * *", cfg.Reminder.Minute, cfg.Reminder.Hour)
	if err := sched.Register(reminderJob, scheduler.MustParseCronExpression(reminderCron)); err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}

	telegramHealth := jobs.NewHealthCheckJob("telegram", tgClient, log)
	if err := sched.Register(telegramHealth, scheduler.NewIntervalSchedule(5*time.Minute)); err != nil {
		return fmt.Errorf("failed to register health check job: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. СОЗДАНИЕ HTTP SERVER (liveness)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout

	httpServer := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		Database: dbConn,
		Logger:   logger.Default(),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	errCh := make(chan error, 2)

	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		log.Info("starting Telegram bot", "polling_timeout", botConfig.PollingTimeout)
		if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("telegram bot error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("EcoHabit bot is running",
		"http_address", httpServer.Address(),
		"reminder_cron", reminderCron,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	// 1. Останавливаем бота (перестаём принимать новые обновления)
	log.Info("stopping Telegram bot...")
	if err := bot.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop bot gracefully", "error", err)
		shutdownErr = err
	}

	// 2. Останавливаем планировщик (ждём завершения текущих задач)
	log.Info("stopping scheduler...")
	if err := sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrSchedulerNotRunning) {
		log.Error("failed to stop scheduler gracefully", "error", err)
		shutdownErr = err
	}

	// 3. Останавливаем HTTP сервер
	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// 4. База данных и Redis закроются через defer

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
