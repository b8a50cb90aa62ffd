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

	"github.com/minjukim/wishmall/internal/config"
	"github.com/minjukim/wishmall/internal/es"
	"github.com/minjukim/wishmall/internal/handlers"
	"github.com/minjukim/wishmall/internal/handlers/cart"
	"github.com/minjukim/wishmall/internal/logging"
	"github.com/minjukim/wishmall/internal/middleware/loggingmw"
	"github.com/minjukim/wishmall/internal/mykafka"
	"github.com/minjukim/wishmall/internal/service"
	httpserver "github.com/minjukim/wishmall/internal/transport/http"
)

const itemsIndex = "items"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod, err := mykafka.NewProducer(configuration.KAFKA_BROKERS)
	if err != nil {
		log.Fatal(err)
	}
	if prod == nil {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}
	if esClient == nil {
		logger.Warn("ES_URL not set, search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		ItemHandler:    &handlers.ItemHandler{DB: db, Producer: prod, JWTSecret: jwtSecret, ES: esClient, ESIndex: itemsIndex},
		CartHandler:    &cart.CartHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		OrderHandler:   &handlers.OrderHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: itemsIndex},
		ServiceHandler: &service.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
