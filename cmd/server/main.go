// Command server runs the paper-trading simulator: REST + WebSocket API over
// a virtual cash ledger, with live prices from Angel One SmartAPI.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradesimv1/config"
	"tradesimv1/internal/execution"
	"tradesimv1/internal/gateway"
	"tradesimv1/internal/logger"
	"tradesimv1/internal/marketdata"
	"tradesimv1/internal/metrics"
	"tradesimv1/internal/strategy"
)

func main() {
	processStart := time.Now()
	cfg := config.Load()
	slogger := logger.Init("tradesim", logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)
	m.SetLedgerState(cfg.InitialCash, 0)

	// Redis event publishing is optional; a missing broker only disables
	// the PubSub mirror, never the simulator.
	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[server] WARNING: redis unreachable at %s, event publishing disabled: %v", cfg.RedisAddr, err)
			rdb = nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		log.Fatalf("[server] create data dir: %v", err)
	}
	journal, err := execution.NewJournal(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[server] open journal: %v", err)
	}
	defer journal.Close()

	market := marketdata.NewSmartAPI(marketdata.SmartAPIConfig{
		APIKey:         cfg.AngelAPIKey,
		ClientCode:     cfg.AngelClientCode,
		Password:       cfg.AngelPassword,
		TOTPSecret:     cfg.AngelTOTPSecret,
		Exchange:       cfg.Exchange,
		ScripMasterURL: cfg.ScripMasterURL,
		ScripCachePath: cfg.ScripCachePath,
	}, slogger)

	hub := gateway.NewHub(slogger)
	sinks := gateway.FanoutSink{hub}
	if rdb != nil {
		sinks = append(sinks, gateway.NewRedisPublisher(rdb, slogger))
	}

	params := strategy.NewParamStore(strategy.DefaultParams())
	eng := execution.NewEngine(execution.Config{
		InitialCash: cfg.InitialCash,
		Market:      market,
		Params:      params,
		Journal:     journal,
		Events:      sinks,
		Metrics:     m,
		Logger:      slogger,
	})

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, eng, params, journal, hub, processStart)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("[server] serving at http://localhost%s (balance ₹%.2f)", cfg.ListenAddr, cfg.InitialCash)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[server] server error: %v", err)
		}
	}()

	<-sigCh
	log.Println("[server] shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}
