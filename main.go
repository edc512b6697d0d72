package main

import (
	"cactus_village_backend/internal/app"
	"cactus_village_backend/internal/config"
	"cactus_village_backend/pkg/configwatcher"
	"cactus_village_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig(*configDir+"/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded")
		application.ReloadConfig(newCfg)
	})

	application.Run()
}
