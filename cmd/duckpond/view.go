package main

import (
	"context"
	"errors"
	"time"

	"github.com/akmonengine/duckpond/term"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func view(ctx context.Context) error {
	// The terminal owns the screen; logs would tear it
	logger := zap.NewNop()

	loop, _, err := newFrameLoop(ctx, logger)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	view := term.NewView(screen, loop, logger)
	loop.Renderer = view

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return view.Run(ctx)
	})

	group.Go(func() error {
		ticker := time.NewTicker(time.Second / time.Duration(max(1, *viewFPS)))
		defer ticker.Stop()

		return loop.Run(ctx, ticker.C)
	})

	err = group.Wait()
	if errors.Is(err, term.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
