package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/events"
	"socialnet/backend/internal/handler"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/media"
	"socialnet/backend/internal/ratelimit"
	"socialnet/backend/internal/service"
	"socialnet/backend/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	// Swagger imports
	_ "socialnet/backend/docs" // This is important for swag to find the generated docs
)

// @title           Socialnet API
// @version         1.0
// @description     REST backend for a small social network: accounts, friends, friend-scoped posts and direct messages.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apiKey SessionCookie
// @in header
// @name Cookie
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	ctx := context.Background()

	// Tracing
	shutdownTracing, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.OTELServiceName)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	// Database
	db, err := database.Open(database.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Tracing:      telemetry.Enabled(cfg.OTELEndpoint),
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	sessions := auth.NewSessionStore(rdb, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)

	// Events: always to connected clients, to Kafka when brokers are configured.
	realtime := hub.NewHub()
	publisher := events.Fanout{realtime}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		kafka := events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		defer kafka.Close()
		publisher = append(publisher, kafka)
		log.Printf("Publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	// Media
	var mediaStore handler.MediaStore
	if cfg.MinioEndpoint != "" {
		store, err := media.New(media.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			log.Fatalf("minio connect: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatalf("minio bucket: %v", err)
		}
		mediaStore = store
	} else {
		log.Println("Warning: MINIO_ENDPOINT not set, media uploads are disabled")
	}

	// Services and handlers
	friends := service.NewFriends(db, publisher)
	h := &handler.Handler{
		Users:            service.NewIdentity(db, publisher),
		Friends:          friends,
		Posts:            service.NewPosts(db, friends, publisher),
		Messages:         service.NewMessages(db, publisher),
		Sessions:         sessions,
		Hub:              realtime,
		Media:            mediaStore,
		WSOriginPatterns: originHosts(cfg.CORSOriginList()),
	}

	var limiter *ratelimit.Limiter
	if cfg.MessageRateLimit > 0 {
		limiter = ratelimit.New(rdb, "messages", cfg.MessageRateLimit, cfg.MessageRateWindow)
	}
	router := handler.NewRouter(h, limiter)

	var httpHandler http.Handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOriginList(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)
	if telemetry.Enabled(cfg.OTELEndpoint) {
		httpHandler = otelhttp.NewHandler(httpHandler, "http.server")
	}

	// Server. No write timeout: /events and /ws stay open.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server is running on :%s", cfg.Port)
		log.Printf("Swagger UI is available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// originHosts turns CORS origins into websocket origin patterns, which match
// on host only.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
