package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/amalg/go-battlecity/internal/game"
	"github.com/amalg/go-battlecity/internal/logging"
	"github.com/amalg/go-battlecity/internal/network"
	"github.com/amalg/go-battlecity/internal/ui"
)

func main() {
	name := flag.String("name", "Player", "Your player name")
	configFile := flag.String("config", "", "YAML config file (default: built-in settings)")
	level := flag.Int("level", -1, "Stage index (default: from config)")
	seed := flag.Int64("seed", 0, "AI random seed (default: from config)")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	config := game.DefaultConfig()
	if *configFile != "" {
		var err error
		if config, err = game.LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if *level >= 0 {
		config.Level = *level
	}
	if *seed != 0 {
		config.Seed = *seed
	}

	// Logs must never reach the terminal: any stray output corrupts Bubbletea's rendering.
	logger, err := logging.New(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine, err := game.NewEngine(config, game.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create game: %v\n", err)
		os.Exit(1)
	}

	session, err := network.NewLocal(engine, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to join game: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	p := tea.NewProgram(ui.NewModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("tui stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
