package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approveBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/approve_booking"
	cancelBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/create_booking"
	extendBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/extend_booking"
	finishBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/finish_booking"
	getBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_booking"
	getOwnerBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_owner_bookings"
	getOwnerPayoutsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_owner_payouts"
	getUserBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_user_bookings"
	quotePriceHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/quote_price"
	rejectBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/reject_booking"
	runPayoutsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/run_payouts"
	runSweepHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/run_sweep"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/conflict"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	commissionRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/commission"
	payoutRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/payout"
	listingServiceClient "github.com/m04kA/SMC-ParkingService/internal/integrations/listingservice"
	"github.com/m04kA/SMC-ParkingService/internal/migration"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	bookingsService "github.com/m04kA/SMC-ParkingService/internal/service/bookings"
	commissionsService "github.com/m04kA/SMC-ParkingService/internal/service/commissions"
	payoutsService "github.com/m04kA/SMC-ParkingService/internal/service/payouts"
	createBookingUC "github.com/m04kA/SMC-ParkingService/internal/usecase/create_booking"
	quotePriceUC "github.com/m04kA/SMC-ParkingService/internal/usecase/quote_price"
	runPayoutsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/run_payouts"
	sweepBookingsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/sweep_bookings"
	"github.com/m04kA/SMC-ParkingService/internal/worker"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-ParkingService...")

	// Метрики: с выключенными метриками коллектор nil, его методы ничего не делают
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.MigrateOnStart {
		version, err := migration.Run(db)
		if err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database schema is at version %d", version)
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Интеграция с ListingService
	listingClient := listingServiceClient.NewClient(
		cfg.ListingService.URL,
		time.Duration(cfg.ListingService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ListingService=%s timeout=%ds)",
		cfg.ListingService.URL, cfg.ListingService.Timeout)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	commissionRepository := commissionRepo.NewRepository(wrappedDB)
	payoutRepository := payoutRepo.NewRepository(wrappedDB)

	detector := conflict.NewDetector(bookingRepository)
	calculator := pricing.NewCalculator(cfg.PricingCalculatorConfig())
	pricingMode := cfg.PricingMode()
	log.Info("Pricing mode: %s, commission rate: %d bps", pricingMode, cfg.Commission.RateBps)

	// Сервисы
	commissionSvc, err := commissionsService.NewService(commissionRepository, cfg.Commission.RateBps, log)
	if err != nil {
		log.Fatal("Failed to initialize commissions service: %v", err)
	}
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		detector,
		calculator,
		commissionSvc,
		txMgr,
		metricsCollector,
		pricingMode,
		log,
	)
	payoutSvc := payoutsService.NewService(payoutRepository, log)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		listingClient,
		detector,
		calculator,
		commissionSvc,
		txMgr,
		metricsCollector,
		pricingMode,
		log,
	)
	quotePriceUseCase := quotePriceUC.NewUseCase(listingClient, calculator, pricingMode, log)
	sweepUseCase := sweepBookingsUC.NewUseCase(
		bookingRepository,
		commissionSvc,
		txMgr,
		metricsCollector,
		sweepBookingsUC.Config{BatchSize: cfg.Sweeper.BatchSize, Workers: cfg.Sweeper.Workers},
		log,
	)
	runPayoutsUseCase := runPayoutsUC.NewUseCase(
		commissionRepository,
		payoutRepository,
		txMgr,
		metricsCollector,
		log,
	)

	// Фоновые задачи
	payoutInterval, _ := cfg.PayoutInterval()
	sweeper := worker.NewSweeper(sweepUseCase, cfg.SweepInterval(), log)
	payoutScheduler := worker.NewPayoutScheduler(runPayoutsUseCase, payoutInterval, log)

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	approveBooking := approveBookingHandler.NewHandler(bookingSvc, log)
	rejectBooking := rejectBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	extendBooking := extendBookingHandler.NewHandler(bookingSvc, log)
	finishBooking := finishBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getOwnerBookings := getOwnerBookingsHandler.NewHandler(bookingSvc, log)
	quotePrice := quotePriceHandler.NewHandler(quotePriceUseCase, log)
	getOwnerPayouts := getOwnerPayoutsHandler.NewHandler(payoutSvc, log)
	runSweep := runSweepHandler.NewHandler(sweeper, log)
	runPayouts := runPayoutsHandler.NewHandler(payoutScheduler, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Предварительный расчет стоимости
	api.HandleFunc("/pricing/quote", quotePrice.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/extend", extendBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/finish", finishBooking.Handle).Methods(http.MethodPatch)

	// История бронирований арендатора
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Владелец мест ---
	protected.HandleFunc("/owners/{ownerId}/bookings", getOwnerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/owners/{ownerId}/payouts", getOwnerPayouts.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Служебные запуски фоновых задач слушают отдельный порт, наружу его не публикуют
	var internalSrv *http.Server
	if cfg.Server.InternalEnabled() {
		internalRouter := mux.NewRouter()
		internalRouter.HandleFunc("/internal/sweep", runSweep.Handle).Methods(http.MethodPost)
		internalRouter.HandleFunc("/internal/payouts/run", runPayouts.Handle).Methods(http.MethodPost)

		internalSrv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.InternalHTTPPort),
			Handler:      internalRouter,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		}
	} else {
		log.Info("Internal listener disabled, sweep and payout runs are not exposed over HTTP")
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if cfg.Sweeper.Enabled {
		workers.Add(1)
		go func() {
			defer workers.Done()
			sweeper.Run(workersCtx)
		}()
		log.Info("Sweeper started (interval=%s, batch=%d, workers=%d)",
			cfg.SweepInterval(), cfg.Sweeper.BatchSize, cfg.Sweeper.Workers)
	}
	if cfg.Payouts.Enabled {
		workers.Add(1)
		go func() {
			defer workers.Done()
			payoutScheduler.Run(workersCtx)
		}()
		log.Info("Payout scheduler started (interval=%s)", payoutInterval)
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	if internalSrv != nil {
		go func() {
			log.Info("Starting internal server on %s", internalSrv.Addr)
			if err := internalSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("Internal server failed to start: %v", err)
			}
		}()
	}

	// SIGUSR1 запускает внеочередной проход sweeper'а, например после простоя
	resume := make(chan os.Signal, 1)
	signal.Notify(resume, syscall.SIGUSR1)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for waiting := true; waiting; {
		select {
		case <-resume:
			log.Info("Received SIGUSR1, resuming sweeper")
			sweeper.Resume()
		case <-quit:
			waiting = false
		}
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	if internalSrv != nil {
		if err := internalSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("Internal server forced to shutdown: %v", err)
		}
	}

	stopWorkers()
	workers.Wait()
	log.Info("Background workers stopped")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}
