package main

import (
	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app"
	"github.com/robbertpopa/itec-web-2025/internal/config"
)

func main() {
	cfg := config.MustLoad()
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Run(cfg)
}
