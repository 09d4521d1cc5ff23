package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/rmachado/go-faceted-search/api"
	"github.com/rmachado/go-faceted-search/config"
	"github.com/rmachado/go-faceted-search/internal/engine"
)

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		version    = flag.Bool("version", false, "Show version information")
		port       = flag.String("port", "", "Port to run the server on (overrides config file)")
		dataDir    = flag.String("data-dir", "", "Directory to store search data (overrides config file)")
		configPath = flag.String("config", "", "Path to a TOML config file")
	)

	flag.Parse()

	if *help {
		fmt.Printf("Faceted Search Engine - a typed query model, filter compiler, and facet aggregator\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		return
	}

	if *version {
		fmt.Printf("Faceted Search Engine v1.0.0\n")
		return
	}

	cfg := config.DefaultServerConfig()
	if *configPath != "" {
		loaded, err := config.LoadServerConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	log.Printf("Using data directory: %s", cfg.DataDir)
	searchEngine := engine.NewEngine(cfg.DataDir, cfg.HistorySize)

	router := gin.Default()
	api.SetupRoutes(router, searchEngine)

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
