// Package server runs the HTTP and gRPC servers until SIGINT/SIGTERM and
// then shuts everything down in order.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/internal/kernel"
	"github.com/shashiranjanraj/pricebook/pkg/cache"
	"github.com/shashiranjanraj/pricebook/pkg/grpc"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
	"github.com/shashiranjanraj/pricebook/pkg/sse"
	"github.com/shashiranjanraj/pricebook/pkg/storage"
)

// Boot loads config and brings up the ambient services shared by the server
// and the CLI: Mongo log sink, Redis cache and storage disks. The returned
// func undoes it.
func Boot(ctx context.Context) (func(), error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var sink *logger.MongoHandler
	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(ctx, uri, config.MongoDatabase(), "logs")
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			sink = h
			logger.EnableMongoSink(h)
		}
	}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", "error", err)
	}

	storage.Connect(ctx)

	return func() {
		if err := cache.Close(); err != nil {
			logger.Warn("redis close", "error", err)
		}
		if sink != nil {
			sink.Close()
		}
	}, nil
}

// Start serves until the process receives SIGINT or SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx)
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context) error {
	shutdown, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	stores, err := kernel.OpenStores(ctx, config.AutoMigrate())
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("store close", "error", err)
		}
	}()

	handler, err := kernel.Handler(stores)
	if err != nil {
		return err
	}

	jobs, err := kernel.Jobs(stores)
	if err != nil {
		return err
	}
	jobsCtx, stopJobs := context.WithCancel(ctx)
	defer stopJobs()
	if jobs != nil {
		jobs.Start(jobsCtx)
	}

	var grpcSrv *grpc.Server
	if port := config.GRPCPort(); port != "" {
		grpcSrv, err = grpc.Start(port, stores.Ping, 10*time.Second)
		if err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	closing := make(chan struct{})
	srv.BaseContext = func(net.Listener) context.Context {
		return sse.WithClosing(context.Background(), closing)
	}
	srv.RegisterOnShutdown(func() { close(closing) })

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pricebook listening", "addr", srv.Addr, "store", stores.Driver, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		grpcSrv.Stop()
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	grpcSrv.Stop()
	stopJobs()
	if jobs != nil {
		jobs.Wait()
	}
	return nil
}
