package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/amalg/go-battlecity/internal/discovery"
	"github.com/amalg/go-battlecity/internal/game"
	"github.com/amalg/go-battlecity/internal/logging"
	"github.com/amalg/go-battlecity/internal/network"
	"github.com/amalg/go-battlecity/internal/ui"
)

func main() {
	port := flag.Int("port", 9999, "Port to listen on")
	name := flag.String("name", "Host", "Your player name")
	configFile := flag.String("config", "", "YAML config file (default: built-in settings)")
	level := flag.Int("level", -1, "Stage index (default: from config)")
	maxPlayers := flag.Int("max-players", 2, "Maximum number of players (1 or 2)")
	logFile := flag.String("log", "", "Log file path (default: discard server logs)")
	logLevel := flag.String("log-level", "info", "Log level")
	discoveryPort := flag.Int("discovery-port", discovery.DefaultPort, "UDP port for LAN room broadcasts")
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
	config.MaxPlayers = *maxPlayers

	// Server goroutines log continuously. Any stderr output would corrupt
	// Bubbletea's terminal rendering, so logs go to a file or nowhere.
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := network.NewServer(fmt.Sprintf("0.0.0.0:%d", *port), engine, logger)
	if err := server.Listen(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
	served := make(chan error, 1)
	go func() { served <- server.Serve(ctx) }()

	// Connect as the host player (local loopback)
	client, err := network.NewClient(fmt.Sprintf("127.0.0.1:%d", *port), *name)
	if err != nil {
		server.Stop()
		fmt.Fprintf(os.Stderr, "Failed to connect as host: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Battle City server on port %d\n", *port)
	fmt.Println("Players can connect using:")
	fmt.Printf("  127.0.0.1:%d (this machine)\n", *port)
	addrs := network.LocalAddrs(*port)
	for _, a := range addrs {
		fmt.Printf("  %s\n", a)
	}
	gameAddr := fmt.Sprintf("127.0.0.1:%d", *port)
	if len(addrs) > 0 {
		gameAddr = addrs[0]
	}
	broadcaster := discovery.NewBroadcaster(*discoveryPort, func() discovery.RoomInfo {
		snap := engine.Snapshot()
		return discovery.RoomInfo{
			Host:       *name,
			Stage:      snap.Level,
			Status:     snap.Status.String(),
			Players:    len(snap.Players),
			MaxPlayers: config.MaxPlayers,
			GameAddr:   gameAddr,
		}
	}, logger)
	go func() {
		if err := broadcaster.Run(ctx); err != nil {
			logger.Warn("room broadcast stopped", zap.Error(err))
		}
	}()

	fmt.Printf("\nConnected as %s. Starting TUI...\n", *name)

	// Small pause so the user can read the addresses
	time.Sleep(500 * time.Millisecond)

	go func() {
		<-ctx.Done()
		client.Close()
	}()

	p := tea.NewProgram(ui.NewModel(client), tea.WithAltScreen())
	_, runErr := p.Run()

	cancel()
	client.Close()
	server.Stop()
	if err := <-served; err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", runErr)
		os.Exit(1)
	}
}
