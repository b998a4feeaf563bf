package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookings-system/internal/config"
	"bookings-system/internal/database"
	"bookings-system/internal/handlers"
	"bookings-system/internal/kafka"
	"bookings-system/internal/logger"
	"bookings-system/internal/models"
	"bookings-system/internal/redis"
	"bookings-system/internal/services"
)

// Фабричные функции для подключения внешних сервисов (подменяемые в тестах).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application агрегирует собранные зависимости.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting bookings system server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = app.consumer.Stop()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
	app.log.Info("Server exited")
}

// buildApplication создает все зависимости (подменяемые в тестах).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	catalogService := services.NewCatalogService(db, redisClient, log, &cfg.Catalog)
	serviceabilityService := services.NewServiceabilityService(db, redisClient, log, &cfg.Serviceability)
	orderService := services.NewOrderService(db, log, catalogService, serviceabilityService)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	quoteHandler := handlers.NewQuoteHandler(orderService, log)
	orderHandler := handlers.NewOrderHandler(orderService, producer, redisClient, log)
	catalogHandler := handlers.NewCatalogHandler(catalogService, producer, log)
	serviceabilityHandler := handlers.NewServiceabilityHandler(serviceabilityService, log)
	healthHandler := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	registerEventHandlers(consumer, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	mux := setupRoutes(quoteHandler, orderHandler, catalogHandler, serviceabilityHandler, healthHandler, rateLimitHandler, rateLimiter, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		mux:      mux,
		server:   server,
	}, nil
}

// setupRoutes настраивает маршруты HTTP сервера
func setupRoutes(quoteHandler *handlers.QuoteHandler, orderHandler *handlers.OrderHandler, catalogHandler *handlers.CatalogHandler, serviceabilityHandler *handlers.ServiceabilityHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Quote endpoint
	mux.HandleFunc("/api/quotes", applyAPI(quoteHandler.QuoteCart))

	// Order endpoints
	mux.HandleFunc("/api/orders", applyAPI(handleOrdersRoute(orderHandler)))
	mux.HandleFunc("/api/orders/", applyAPI(handleOrderRoute(orderHandler)))

	// Catalog endpoints
	mux.HandleFunc("/api/catalog", applyAPI(handleCatalogRoute(catalogHandler)))
	mux.HandleFunc("/api/catalog/", applyAPI(handleCatalogEntryRoute(catalogHandler)))

	// Serviceability endpoint
	mux.HandleFunc("/api/serviceability", applyAPI(serviceabilityHandler.Check))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", applyAPI(rateLimitHandler.Status))

	return mux
}

// handleOrdersRoute обрабатывает маршруты для коллекции заказов
func handleOrdersRoute(handler *handlers.OrderHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetOrders(w, r)
		case http.MethodPost:
			handler.CreateOrder(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleOrderRoute обрабатывает маршруты для отдельного заказа
func handleOrderRoute(handler *handlers.OrderHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/status") {
			// Обновление статуса заказа
			if r.Method == http.MethodPut {
				handler.UpdateOrderStatus(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		} else {
			// Получение заказа по ID
			if r.Method == http.MethodGet {
				handler.GetOrder(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		}
	}
}

// handleCatalogRoute обрабатывает маршруты для коллекции услуг
func handleCatalogRoute(handler *handlers.CatalogHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListServices(w, r)
		case http.MethodPost:
			handler.CreateService(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleCatalogEntryRoute обрабатывает маршруты для отдельной услуги
func handleCatalogEntryRoute(handler *handlers.CatalogHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.GetService(w, r)
		case http.MethodPut:
			handler.UpdateService(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// registerEventHandlers регистрирует обработчики событий Kafka
func registerEventHandlers(consumer *kafka.Consumer, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeOrderPriced, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order priced event")
		// Сюда подключаются уведомления клиенту о созданном заказе
		return nil
	})

	consumer.RegisterHandler(models.EventTypeOrderStatusChanged, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing order status changed event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeServiceUpdated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing service updated event")
		return nil
	})
}

// corsMiddleware и другие helper функции
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
