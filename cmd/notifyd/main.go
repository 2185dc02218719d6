package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/softwarechaser9/elearning-notify/internal/config"
	"github.com/softwarechaser9/elearning-notify/internal/hub"
	"github.com/softwarechaser9/elearning-notify/internal/mock"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	dbPath := flag.String("db", "", "Override notification database path")
	demoUser := flag.String("demo", "", "Publish sample notifications to this user")
	mintToken := flag.String("mint-token", "", "Print a channel token for this user and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	if *mintToken != "" {
		token, err := hub.GenerateToken(cfg.Server.JWTSecret, *mintToken, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}
		os.Stdout.WriteString(token + "\n")
		return
	}

	store, err := hub.OpenStore(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	h := hub.NewHub(store)
	server := hub.NewServer(h, store, cfg.Server.JWTSecret, cfg.Server.PublishToken, cfg.Server.AllowedOrigins)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *demoUser != "" {
		log.Printf("Publishing demo notifications to %q", *demoUser)
		gen := mock.NewGenerator(h, *demoUser, 10*time.Second)
		go gen.Start(ctx)
	}

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		store.Close()
		os.Exit(0)
	}()

	if err := hub.ListenAndServe(cfg.Server.Host, cfg.Server.Port, mux); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
