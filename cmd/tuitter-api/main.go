package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"tuitter/internal/config"
	"tuitter/internal/dbsql"
	"tuitter/internal/di"
)

func newLogger(cnf *config.Config) *logrus.Logger {
	log := logrus.New()
	if cnf.Logging.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	log.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(cnf.Logging.Level); err == nil {
		log.SetLevel(level)
	}
	return log
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Println(".env file not found, using system env variables")
	}

	cnf := config.Load()
	log := newLogger(cnf)

	db, err := dbsql.Open(cnf)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	log.WithField("url", cnf.Database.URL).Info("Database ready")

	server := di.InitServer(db, cnf, log)

	httpServer := &http.Server{
		Addr:         cnf.Server.Host + ":" + cnf.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cnf.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cnf.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("tuitter API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}
