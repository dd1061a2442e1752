package main

import (
	"github.com/robbertpopa/itec-web-2025/internal/app"
	"github.com/robbertpopa/itec-web-2025/internal/config"
)

func main() {
	cfg := config.MustLoad()
	app.RunWorker(cfg)
}
