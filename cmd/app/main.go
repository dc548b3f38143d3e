package main

import (
	"flag"
	"log"
	"os"

	"TrueSignal/internal/di"
	"TrueSignal/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s cache=%s next_actions=%s kafka=%t",
		cfg.Environment, cfg.Cache.Backend, cfg.NextActions.Backend, cfg.Kafka.Enabled)
	if cfg.OpenAI.APIKey == "" {
		log.Printf("warning: OPENAI_API_KEY is not set; every analysis will use the fallback")
	}

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	err = app.Run()
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
