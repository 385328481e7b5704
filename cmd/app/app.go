package main

import (
	"os"

	"github.com/ikarus3d/go-backend/internal/app"
	config "github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

//	@title			Product Recommendation API
//	@version		1.0
//	@description	Бэкенд рекомендаций продуктов на основе семантического поиска

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
