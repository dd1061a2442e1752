package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/tui"
	"github.com/robbertpopa/itec-web-2025/pkg/client"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type browseConfig struct {
	APIURL   string `env:"ITEC_API_URL" env-default:"http://localhost:8081/v1"`
	Token    string `env:"ITEC_TOKEN"`
	Email    string `env:"ITEC_EMAIL"`
	Password string `env:"ITEC_PASSWORD"`
	PageSize int    `env:"ITEC_PAGE_SIZE" env-default:"8"`
	Recent   int    `env:"ITEC_RECENT" env-default:"3"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg browseConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return fmt.Errorf("read env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	c := client.New(cfg.APIURL, cfg.Token)
	// Owner profiles need a token. Without one authors show as unknown.
	if cfg.Token == "" && cfg.Email != "" {
		loginCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := c.Login(loginCtx, cfg.Email, cfg.Password)
		cancel()
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	ctrl := listing.NewController(logger.Discard(), c, c, c, listing.Options{PageSize: cfg.PageSize})
	defer ctrl.Close()

	p := tea.NewProgram(tui.New(ctx, ctrl, cfg.Recent), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
