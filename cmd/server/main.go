package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/senthilk/gst-billing/internal/config"
	"github.com/senthilk/gst-billing/internal/db"
	"github.com/senthilk/gst-billing/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	flag.Parse()

	cfg := config.Load()
	log := config.Logger()

	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	if *migrateOnly {
		log.Info("migrations complete")
		return
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(conn, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
