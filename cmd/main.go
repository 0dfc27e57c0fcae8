package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	bookClassHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/book_class"
	cancelBookingHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/cancel_booking"
	getMemberBookingHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/get_member_booking"
	getMemberBookingsHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/get_member_bookings"
	getPenaltyHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/get_penalty"
	listClassesHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/list_classes"
	markAttendanceHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/mark_attendance"
	resetPenaltyHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/reset_penalty"
	switchBookingHandler "github.com/m04kA/GYM-ClassService/internal/api/handlers/switch_booking"
	"github.com/m04kA/GYM-ClassService/internal/api/middleware"
	"github.com/m04kA/GYM-ClassService/internal/config"
	"github.com/m04kA/GYM-ClassService/internal/infra/notify"
	bookingRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/booking"
	entitlementRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/entitlement"
	memberRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/member"
	templateRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/template"
	bookingsService "github.com/m04kA/GYM-ClassService/internal/service/bookings"
	classesService "github.com/m04kA/GYM-ClassService/internal/service/classes"
	membersService "github.com/m04kA/GYM-ClassService/internal/service/members"
	bookClassUC "github.com/m04kA/GYM-ClassService/internal/usecase/book_class"
	cancelBookingUC "github.com/m04kA/GYM-ClassService/internal/usecase/cancel_booking"
	switchBookingUC "github.com/m04kA/GYM-ClassService/internal/usecase/switch_booking"
	"github.com/m04kA/GYM-ClassService/pkg/dbmetrics"
	"github.com/m04kA/GYM-ClassService/pkg/logger"
	"github.com/m04kA/GYM-ClassService/pkg/metrics"
	"github.com/m04kA/GYM-ClassService/pkg/simpletxmanager"
	"github.com/m04kA/GYM-ClassService/pkg/txmanager"
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

	log.Info("Starting GYM-ClassService...")
	log.Info("Configuration loaded from config.toml")

	// Часовой пояс зала: расписание и окна политик считаются в нём
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
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

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории (с метриками или без)
	var (
		templateRepository    *templateRepo.Repository
		bookingRepository     *bookingRepo.Repository
		entitlementRepository *entitlementRepo.Repository
		memberRepository      *memberRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		templateRepository = templateRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		entitlementRepository = entitlementRepo.NewRepository(wrappedDB)
		memberRepository = memberRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		templateRepository = templateRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		entitlementRepository = entitlementRepo.NewRepository(db)
		memberRepository = memberRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем шлюз уведомлений
	var eventNotifier notify.Notifier
	if cfg.Notifier.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Notifier.Addr})
		defer redisClient.Close()

		eventNotifier = notify.NewRedisNotifier(redisClient, cfg.Notifier.Channel, log)
		log.Info("Notifier enabled (redis=%s, channel=%s)", cfg.Notifier.Addr, cfg.Notifier.Channel)
	} else {
		eventNotifier = notify.NewNoopNotifier()
		log.Info("Notifier disabled, events will be dropped")
	}

	// Инициализируем сервисы
	classesSvc := classesService.NewService(
		templateRepository,
		bookingRepository,
		entitlementRepository,
		log,
		loc,
		cfg.Booking.ScheduleWindowDays,
	)
	bookingsSvc := bookingsService.NewService(bookingRepository, log, loc)
	membersSvc := membersService.NewService(memberRepository, log)

	// Инициализируем use cases
	bookClassUseCase := bookClassUC.NewUseCase(
		classesSvc,
		bookingRepository,
		entitlementRepository,
		memberRepository,
		txMgr,
		eventNotifier,
		log,
		loc,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		templateRepository,
		entitlementRepository,
		memberRepository,
		txMgr,
		eventNotifier,
		log,
		loc,
		cfg.Booking.CancelWindowHours,
		cfg.Booking.LateCancelLimit,
		cfg.Booking.BlockDays,
	)
	switchBookingUseCase := switchBookingUC.NewUseCase(
		classesSvc,
		bookingRepository,
		templateRepository,
		entitlementRepository,
		txMgr,
		eventNotifier,
		log,
		loc,
		cfg.Booking.SwitchWindowHours,
	)

	// Инициализируем handlers
	listClasses := listClassesHandler.NewHandler(classesSvc, log)
	bookClass := bookClassHandler.NewHandler(bookClassUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	switchBooking := switchBookingHandler.NewHandler(switchBookingUseCase, log)
	markAttendance := markAttendanceHandler.NewHandler(bookingsSvc, log)
	getMemberBooking := getMemberBookingHandler.NewHandler(bookingsSvc, log)
	getMemberBookings := getMemberBookingsHandler.NewHandler(bookingsSvc, log)
	getPenalty := getPenaltyHandler.NewHandler(membersSvc, log)
	resetPenalty := resetPenaltyHandler.NewHandler(membersSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Все ручки требуют идентификацию через заголовки шлюза
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(log))

	// --- Расписание ---
	// Окно расписания с живыми данными о записи
	api.HandleFunc("/classes", listClasses.Handle).Methods(http.MethodGet)

	// Активное бронирование текущего участника на занятие
	api.HandleFunc("/classes/{instanceId}/booking", getMemberBooking.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	// Запись на занятие
	api.HandleFunc("/bookings", bookClass.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Перенос бронирования на другое занятие
	api.HandleFunc("/bookings/{bookingId}/switch", switchBooking.Handle).Methods(http.MethodPost)

	// Отметка посещения (только персонал)
	api.HandleFunc("/bookings/{bookingId}/attendance", markAttendance.Handle).Methods(http.MethodPatch)

	// --- Участники ---
	// История бронирований участника
	api.HandleFunc("/members/{memberId}/bookings", getMemberBookings.Handle).Methods(http.MethodGet)

	// Штрафной учёт участника
	api.HandleFunc("/members/{memberId}/penalty", getPenalty.Handle).Methods(http.MethodGet)

	// Сброс штрафного счётчика (только персонал)
	api.HandleFunc("/members/{memberId}/penalty/reset", resetPenalty.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
