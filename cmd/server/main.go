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

	"github.com/printyshop/printy/internal/authctx"
	"github.com/printyshop/printy/internal/catalog"
	"github.com/printyshop/printy/internal/checkout"
	"github.com/printyshop/printy/internal/config"
	"github.com/printyshop/printy/internal/es"
	"github.com/printyshop/printy/internal/events"
	"github.com/printyshop/printy/internal/httpserver"
	"github.com/printyshop/printy/internal/logging"
	"github.com/printyshop/printy/internal/orders"
	"github.com/printyshop/printy/internal/payment"
	"github.com/printyshop/printy/internal/storage"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	prod := events.NewProducer(config.CSV(configuration.KAFKA_ADDRESS))

	var searchHandler *httpserver.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &httpserver.SearchHandler{ES: esClient, Index: "product"}
	}

	store := storage.NewClient(configuration.STORAGE_URL, configuration.STORAGE_BUCKET, configuration.STORAGE_KEY)
	razorpay := payment.NewRazorpayProvider(
		configuration.RAZORPAY_URL,
		configuration.RAZORPAY_KEY_ID,
		configuration.RAZORPAY_KEY_SECRET,
	)

	orderRepo := &orders.GormRepo{DB: db}
	productRepo := &catalog.GormRepo{DB: db}

	orch := &checkout.Orchestrator{
		Orders: orderRepo,
		Providers: map[payment.Method]payment.Provider{
			payment.MethodRazorpay: razorpay,
			payment.MethodCOD:      &payment.CODProvider{},
		},
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	deps := httpserver.Deps{
		ProductHandler: &httpserver.ProductHandler{Repo: productRepo, Producer: prod},
		CheckoutHandler: &httpserver.CheckoutHandler{
			Registry: checkout.NewRegistry(),
			Orch:     orch,
			Products: productRepo,
			Uploader: &storage.DesignUploader{Store: store},
			Razorpay: razorpay,
			Producer: prod,
		},
		OrderHandler:  &httpserver.OrderHandler{Repo: orderRepo},
		SearchHandler: searchHandler,
		Auth:          &authctx.Middleware{JWTSecret: []byte(configuration.JWT_SECRET)},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
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
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
