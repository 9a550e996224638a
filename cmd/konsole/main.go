package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/brreg"
	"github.com/kontali/konsole/internal/chat"
	"github.com/kontali/konsole/internal/config"
	"github.com/kontali/konsole/internal/secrets"
	"github.com/kontali/konsole/internal/store"
	"github.com/kontali/konsole/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := store.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	client := api.New(cfg.API.BaseURL, cfg.API.ClientID, cfg.API.UserID)
	reg := brreg.New(cfg.Brreg.BaseURL)
	provider := chatProvider(cfg, client)

	repos := tui.Repos{
		Prefs:   store.NewPrefRepo(db),
		Filters: store.NewFilterRepo(db),
		Clients: store.NewClientRepo(db),
	}

	p := tea.NewProgram(tui.New(ctx, cfg, client, reg, provider, repos), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

func chatProvider(cfg config.Config, client *api.Client) chat.Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) {
	case "openai":
		return chat.NewOpenAIProvider(resolveAPIKey(cfg), cfg.LLM.Model)
	default:
		return &chat.BackendProvider{Client: client}
	}
}

func resolveAPIKey(cfg config.Config) string {
	env := strings.TrimSpace(cfg.LLM.APIKeyEnv)
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if k, err := secrets.Fetch("openai"); err == nil && k != "" {
		return k
	}
	return strings.TrimSpace(cfg.LLM.APIKey)
}
