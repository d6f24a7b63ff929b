package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodMarketplace/internal/api"
	"foodMarketplace/internal/config"
	"foodMarketplace/internal/db"
	"foodMarketplace/internal/events"
	"foodMarketplace/internal/metrics"
	"foodMarketplace/internal/service"
	"foodMarketplace/repository"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	log.Info("configuration loaded", "config", cfg.String())

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Error("open db", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Error("close db", "err", err)
		}
	}()

	orders := repository.NewOrderRepository(d)
	restaurants := repository.NewRestaurantRepository(d)
	deliveries := repository.NewDeliveryRepository(d)
	users := repository.NewUserRepository(d)
	stats := repository.NewStatsRepository(d)

	m := metrics.New()

	var publisher events.Publisher = events.Nop{}
	if cfg.Events.AMQPURL != "" {
		amqpPub, err := events.ConnectAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			log.Error("connect amqp", "err", err)
			os.Exit(1)
		}
		defer amqpPub.Close()
		publisher = amqpPub
		log.Info("order events enabled", "exchange", cfg.Events.Exchange)
	}

	orderSvc := service.NewOrderService(service.OrderServiceDeps{
		Orders:      orders,
		Restaurants: restaurants,
		Deliveries:  deliveries,
		Publisher:   publisher,
		Metrics:     m,
		Log:         log,
		TaxRate:     cfg.Orders.TaxRate,
	})
	deliverySvc := service.NewDeliveryService(service.DeliveryServiceDeps{
		Deliveries:  deliveries,
		Orders:      orders,
		Restaurants: restaurants,
		Users:       users,
		Metrics:     m,
		Log:         log,
	})
	statsSvc := service.NewStatsService(stats, restaurants, log, cfg.Orders.DailyStatsDays)

	server := api.NewServer(orderSvc, deliverySvc, statsSvc, cfg.Auth.JWTSecret, log)

	metricsSrv := &http.Server{
		Addr:              cfg.HTTP.MetricsAddress,
		Handler:           promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("metrics listening", "addr", cfg.HTTP.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server", "err", err)
		}
	}()

	apiSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("api listening", "addr", cfg.HTTP.Address)
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server", "err", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(ctx); err != nil {
		log.Error("api shutdown", "err", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Error("metrics shutdown", "err", err)
	}
}
