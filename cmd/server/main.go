package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-service/internal/auth"
	"checkout-service/internal/config"
	"checkout-service/internal/controllers/http"
	"checkout-service/internal/domain"
	"checkout-service/internal/infra/cache"
	"checkout-service/internal/infra/database"
	"checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/metrics"
	"checkout-service/internal/repository/gormrepo"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.LoadDotEnv()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	userRepo := gormrepo.NewUserRepository(db)
	productRepo := gormrepo.NewProductRepository(db)
	cartRepo := gormrepo.NewCartRepository(db)
	orderRepo := gormrepo.NewOrderRepository(db)
	checkoutUoW := gormrepo.NewCheckoutUnitOfWork(db, sql.LevelReadCommitted)

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	jsonCache := cache.NewJSON(redisClient)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authService := services.NewAuthService(userRepo, tokens)
	productService := services.NewProductService(productRepo)
	productService.SetCache(jsonCache)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo)
	orderService.SetCache(jsonCache)
	checkoutService := services.NewCheckoutService(checkoutUoW)

	var publisher rabbitmq.PublisherInterface = rabbitmq.LogPublisher{}
	var consumer *rabbitmq.Consumer
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		defer p.Close()
		publisher = p

		consumer, err = rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.PaymentQueue,
			domain.EventPaymentConfirmed, orderService.HandlePaymentConfirmed)
		if err != nil {
			log.Fatalf("failed to init consumer: %v", err)
		}
		defer consumer.Close()
	} else {
		log.Println("RABBITMQ_URL not set, events are logged only")
	}

	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)
	handler := http.NewHandler(checkoutService, orderService, cartService, productService, authService, publisher, serverMetrics)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(http.RequestLogger(serverMetrics))
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(http.CORS(cfg.Server.CORSOrigins))
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	handler.RegisterRoutes(r)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting checkout service on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("Shutting down checkout service")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server stopped: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
