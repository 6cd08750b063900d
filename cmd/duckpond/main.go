package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akmonengine/duckpond/asset"
	"github.com/akmonengine/duckpond/config"
	"github.com/akmonengine/duckpond/internal/logging"
	"github.com/akmonengine/duckpond/scene"
	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
)

var (
	app = kingpin.New("duckpond", "Tap the pond to drop cans while a duck swims its loop.")

	configPath = app.Flag("config", "YAML configuration file.").Short('c').ExistingFile()
	logLevel   = app.Flag("log-level", "Log level.").Default("info").Enum("debug", "info", "warn", "error")
	logDev     = app.Flag("log-dev", "Human readable console logs.").Bool()
	capacity   = app.Flag("capacity", "Override the object pool capacity.").Int()

	serveCmd    = app.Command("serve", "Stream the scene to websocket clients.")
	serveListen = serveCmd.Flag("listen", "HTTP listen address.").Default(":8081").Short('l').String()
	serveFPS    = serveCmd.Flag("fps", "Frames per second.").Default("60").Int()

	viewCmd = app.Command("view", "Play in the terminal.")
	viewFPS = viewCmd.Flag("fps", "Frames per second.").Default("30").Int()

	simulateCmd    = app.Command("simulate", "Run headless with scripted taps and print a summary.")
	simulateFrames = simulateCmd.Flag("frames", "Frames to simulate.").Default("600").Int()
	simulateTaps   = simulateCmd.Flag("taps", "Scripted taps, one every ten frames.").Default("60").Int()
	simulateDt     = simulateCmd.Flag("dt", "Wall time per frame in seconds.").Default("0.016666666666666666").Float64()
)

func main() {
	app.Version("0.1.0")
	app.HelpFlag.Short('h')

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case serveCmd.FullCommand():
		err = serve(ctx)
	case viewCmd.FullCommand():
		err = view(ctx)
	case simulateCmd.FullCommand():
		err = simulate(ctx)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "duckpond:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if *capacity > 0 {
		cfg.Capacity = *capacity
	}

	return cfg, cfg.Validate()
}

func newLogger() (*zap.Logger, error) {
	return logging.New(*logLevel, *logDev)
}

func loadAssets(ctx context.Context, cfg config.Config) *asset.Future {
	return asset.LoadAsync(ctx, func(ctx context.Context) (*asset.Graph, error) {
		if cfg.Assets.Path == "" {
			return asset.Builtin(), nil
		}

		return asset.LoadFile(cfg.Assets.Path)
	})
}

// newFrameLoop assembles the scene; the renderer is attached by the caller
func newFrameLoop(ctx context.Context, logger *zap.Logger) (*scene.FrameLoop, *asset.Future, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	sceneContext, err := scene.NewSceneContext(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	future := loadAssets(ctx, cfg)
	loop := scene.NewFrameLoop(scene.NewScene(sceneContext, future), nil, scene.DefaultInboxSize)

	return loop, future, nil
}
