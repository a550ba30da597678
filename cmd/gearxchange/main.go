package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"gearxchange/internal/config"
	"gearxchange/internal/db"
	"gearxchange/internal/listing"
	"gearxchange/internal/market"
	"gearxchange/internal/session"
	"gearxchange/internal/ui"
	"gearxchange/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	hasher, err := user.NewHasher(cfg.Auth.Scheme)
	if err != nil {
		log.Fatalf("Failed to configure auth: %v", err)
	}

	// A store that cannot be opened makes the whole client unusable, so
	// this aborts startup instead of limping on.
	database, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := database.Cleanup(); err != nil {
			log.Printf("Failed to clean up database: %v", err)
		}
	}()

	users := user.NewRepo(database.DB, hasher)
	listings := listing.NewRepo(database.DB)
	sessions := session.NewManager()
	svc := market.NewService(users, listings, sessions)

	if cfg.Database.SeedFixtures {
		if err := db.SeedFixtures(users, listings); err != nil {
			log.Fatalf("Failed to seed fixtures: %v", err)
		}
	}

	p := tea.NewProgram(ui.NewRootModel(svc), tea.WithAltScreen())

	// The ephemeral database must go away even on SIGTERM, so translate
	// the signal into a clean program quit and let the deferred cleanup
	// run.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		log.Printf("Client error: %v", err)
	}
}
