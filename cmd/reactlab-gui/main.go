package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/GermanButtiero/reaction-time/engine"
	"github.com/GermanButtiero/reaction-time/internal/config"
	"github.com/GermanButtiero/reaction-time/internal/logging"
	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"go.uber.org/zap"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer log.Sync()

	cache, err := config.LoadCache(config.CacheFile)
	if err != nil {
		log.Warn("setup cache ignored", zap.Error(err))
	}
	cfg.ApplyCache(cache)

	ok, err := engine.RunGuiSetup(cfg, log)
	if err != nil || !ok {
		return err
	}

	outcome, err := engine.Run(ctx, cfg, log)
	if err != nil {
		log.Error("session failed", zap.Error(err))
		return err
	}
	if outcome.Skipped {
		fmt.Printf("Participant %s trial %d is already recorded.\n", cfg.Participant.ID, cfg.Participant.Trial)
	}
	return nil
}
