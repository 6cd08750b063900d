package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akmonengine/duckpond/stream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func serve(ctx context.Context) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	loop, _, err := newFrameLoop(ctx, logger)
	if err != nil {
		return err
	}

	hub := stream.NewHub(loop, logger.Named("stream"))
	loop.Renderer = hub

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	server := &http.Server{
		Addr:              *serveListen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return hub.Run(ctx)
	})

	group.Go(func() error {
		ticker := time.NewTicker(time.Second / time.Duration(max(1, *serveFPS)))
		defer ticker.Stop()

		return loop.Run(ctx, ticker.C)
	})

	group.Go(func() error {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
