package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"semshapes/internal/client"
	"semshapes/internal/config"
	"semshapes/internal/embedding"
	"semshapes/internal/service"
	"semshapes/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var apiURL, cfgPath string
	var local bool
	var n int
	flag.StringVar(&apiURL, "api", "http://localhost:8000", "Base URL of a running semshapes server")
	flag.BoolVar(&local, "local", false, "Load the model in-process instead of calling a server")
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file used with -local")
	flag.IntVar(&n, "n", 5, "Number of results per expression")
	flag.Parse()

	var port tui.Port
	var summary string
	if local {
		var cfg *config.AppConfig
		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		config.ApplyEnv(cfg)
		table := embedding.LoadOrFallback(context.Background(), embedding.LoadConfig{
			Path:   cfg.Model.Path,
			Format: cfg.Model.Format,
			Table:  cfg.Model.Table,
			Limit:  cfg.Model.Limit,
		})
		engine, err := service.NewEngine(table)
		if err != nil {
			log.Fatalf("engine init failed: %v", err)
		}
		port = tui.Local{Service: engine}
		summary = fmt.Sprintf("local %s model: %d words, %d dimensions", table.ModelType(), table.VocabSize(), table.Dimensions())
	} else {
		c := client.NewClient(client.Config{BaseURL: apiURL})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		info, err := c.Info(ctx)
		cancel()
		if err != nil {
			log.Fatalf("cannot reach %s: %v", apiURL, err)
		}
		port = c
		summary = fmt.Sprintf("%s: %s model, %d words, %d dimensions", apiURL, info.ModelType, info.VocabSize, info.Dimensions)
	}

	m := tui.New(port, summary, n)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
