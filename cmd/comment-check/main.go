package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrModa2442/YouTube-comment-check/finder"
	"github.com/MrModa2442/YouTube-comment-check/server"
	"github.com/MrModa2442/YouTube-comment-check/shared/config"
	"github.com/MrModa2442/YouTube-comment-check/shared/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	f := finder.New(cfg)

	if len(os.Args) < 2 {
		fmt.Println("Usage: comment-check <video URL or ID> | --serve | --watch")
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--serve":
		if err := f.Initialize(); err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		srv := server.New(cfg, f)
		if err := srv.Start(ctx); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case "--watch":
		s := scheduler.New(cfg, f, f.Monitor())
		if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Scheduler failed: %v", err)
		}

	default:
		if err := f.Initialize(); err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		report, err := f.FetchAndAnalyze(ctx, os.Args[1])
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		fmt.Println(string(out))
	}
}
