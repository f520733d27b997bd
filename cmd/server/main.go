package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/obinnaukwu/storefront/internal/config"
	"github.com/obinnaukwu/storefront/internal/es"
	"github.com/obinnaukwu/storefront/internal/handlers"
	authhandlers "github.com/obinnaukwu/storefront/internal/handlers/auth"
	"github.com/obinnaukwu/storefront/internal/handlers/cart"
	"github.com/obinnaukwu/storefront/internal/handlers/payment"
	"github.com/obinnaukwu/storefront/internal/logging"
	authmw "github.com/obinnaukwu/storefront/internal/middleware/auth"
	loggingmw "github.com/obinnaukwu/storefront/internal/middleware/logging"
	"github.com/obinnaukwu/storefront/internal/mykafka"
	"github.com/obinnaukwu/storefront/internal/paystack"
	"github.com/obinnaukwu/storefront/internal/repo"
	"github.com/obinnaukwu/storefront/internal/service"
	httpserver "github.com/obinnaukwu/storefront/internal/transport/http"
	"github.com/obinnaukwu/storefront/internal/validation"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, configuration)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	gateway, err := paystack.NewClient(
		configuration.PAYSTACK_SECRET_KEY,
		paystack.WithBaseURL(configuration.PAYSTACK_BASE_URL),
		paystack.WithMinorUnit(configuration.PAYSTACK_MINOR_UNIT),
	)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	gormRepo := &repo.GormRepo{DB: db}
	cartService := &service.CartService{
		Repo:        gormRepo,
		TaxRate:     configuration.TAX_RATE,
		ShippingFee: configuration.SHIPPING_FEE,
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	deps := httpserver.Deps{
		AuthHandler:    &authhandlers.AuthHandler{Repo: gormRepo, JWTSecret: jwtSecret, Producer: prod},
		CartHandler:    &cart.CartHTTP{Svc: cartService, Producer: prod},
		PaymentHandler: &payment.PaymentHTTP{Gateway: gateway},
		ProductHandler: &handlers.ProductHandler{Repo: gormRepo, Producer: prod, ES: esClient, Index: "product"},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: "product"},
		AuthMW:         authmw.NewBearerMiddleware(jwtSecret),
	}

	httpserver.Register(e, &deps)

	port := configuration.SERVER_PORT
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
