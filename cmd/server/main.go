package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petpos_backend/internal/config"
	"petpos_backend/internal/database"
	"petpos_backend/internal/docstore"
	"petpos_backend/internal/events"
	"petpos_backend/internal/metrics"
	"petpos_backend/internal/middleware"
	"petpos_backend/internal/revocation"
	"petpos_backend/internal/router"
	"petpos_backend/pkg/tracing"
	"petpos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	serviceName    = "petpos-backend"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	utils.InitLogger(serviceName, cfg.IsDevelopment(), cfg.LogLevel)

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(serviceName, serviceVersion, cfg.JaegerEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				utils.LogError(err, "Failed to shut down tracer")
			}
		}()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	storeOpts := []docstore.Option{
		docstore.WithMaxAttempts(cfg.MaxTxAttempts),
		docstore.WithRetryHook(m.ObserveTxRetry),
	}

	var store docstore.Store
	switch cfg.StoreDriver {
	case "memory":
		store = docstore.NewMemoryStore(storeOpts...)
		utils.LogWarn("Using in-memory store; data is lost on restart")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := database.Connect(ctx, cfg.DB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		store = docstore.NewPostgresStore(db, storeOpts...)
		utils.LogInfo("Database initialized", map[string]interface{}{"host": cfg.DB.Host, "name": cfg.DB.Name})
	}
	defer store.Close()

	var revoked revocation.List
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		revoked = revocation.NewRedisList(client)
		utils.LogInfo("Token revocation list backed by Redis", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		revoked = revocation.NewMemoryList()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.SalesTopic, cfg.OrdersTopic)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.KafkaBrokers).Msg("Failed to create Kafka producer")
		}
		publisher = kafka.WithObserver(m.ObserveEvent)
	}
	defer publisher.Close()

	svc := router.NewServices(cfg, store, revoked, publisher, m)
	if err := svc.Auth.SeedAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin user")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	engine.Use(middleware.MetricsMiddleware(m))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Setup(engine, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(engine, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "store": cfg.StoreDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.LogInfo("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}
