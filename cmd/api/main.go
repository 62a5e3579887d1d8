package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"tabscope/adapters/api"
	"tabscope/adapters/excel"
	"tabscope/adapters/postgres"
	"tabscope/internal/analyzer"
	"tabscope/internal/config"
	"tabscope/ports"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	var store ports.ResultStore
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(context.Background(), cfg.Database.URL)
		if err != nil {
			log.Fatalf("database error: %v", err)
		}
		defer db.Close()
		store = postgres.NewResultStore(db)
	} else {
		log.Println("DATABASE_URL not set, results are cached in memory only")
	}

	app := api.NewApp(api.Config{
		Port:      cfg.Server.Port,
		EngineCfg: cfg.Engine,
	}, analyzer.NewOrchestrator(store), excel.NewDataReader(), store)

	if err := app.Start(cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
