package main

import (
	"log"

	"github.com/joho/godotenv"

	"helioscope/internal/config"
	"helioscope/internal/errors"
	"helioscope/internal/loader"
	"helioscope/internal/session"
	"helioscope/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	sources := loader.New(appConfig.Data.Dir)
	sessions := session.NewManager(sources.LoadAll)

	// One eager load so the dashboard starts with data. A missing country is
	// only a warning; finding no files at all is fatal.
	if _, err := sessions.Reload(); err != nil {
		if errors.GetCode(err) == errors.CodeNoSources {
			log.Fatalf("No solar datasets found in %s: %v", appConfig.Data.Dir, err)
		}
		log.Fatalf("Failed to load datasets: %v", err)
	}

	app, err := ui.NewApp(appConfig, sessions)
	if err != nil {
		log.Fatalf("Failed to create dashboard app: %v", err)
	}

	log.Fatal(app.Start())
}
