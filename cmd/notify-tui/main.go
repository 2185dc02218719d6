package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/softwarechaser9/elearning-notify/internal/config"
	"github.com/softwarechaser9/elearning-notify/internal/session"
	"github.com/softwarechaser9/elearning-notify/internal/tui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	baseURL := flag.String("url", "", "Override application base URL")
	token := flag.String("token", "", "Override channel token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Client.Token = *token
	}

	// The TUI draws on the alternate screen; keep log noise out of it.
	logFile, err := os.OpenFile("notify-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	sink := tui.NewProgramSink()
	sess, err := session.New(session.Config{
		BaseURL: cfg.Client.BaseURL,
		Backoff: session.Backoff{
			BaseInterval: cfg.Session.BackoffBase,
			MaxAttempts:  cfg.Session.MaxAttempts,
		},
		FeedCapacity: cfg.Session.FeedCapacity,
		Sink:         sink,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	p := tea.NewProgram(tui.New(sess), tea.WithAltScreen())
	sink.Bind(p)

	if err := sess.Attach(cfg.Client.Token); err != nil {
		log.Fatalf("Failed to attach: %v", err)
	}

	if _, err := p.Run(); err != nil {
		sess.Teardown()
		log.Fatalf("TUI error: %v", err)
	}
	sess.Teardown()
}
