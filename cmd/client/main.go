package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/go-battlecity/internal/discovery"
	"github.com/amalg/go-battlecity/internal/network"
	"github.com/amalg/go-battlecity/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "Server address (e.g., 192.168.1.5:9999); empty searches the LAN")
	name := flag.String("name", "Player", "Your player name")
	discoveryPort := flag.Int("discovery-port", discovery.DefaultPort, "UDP port for LAN room broadcasts")
	wait := flag.Duration("wait", 5*time.Second, "How long to search the LAN for a game")
	flag.Parse()

	if *addr == "" {
		fmt.Println("Searching the LAN for a game...")
		ctx, cancel := context.WithTimeout(context.Background(), *wait)
		room, err := discovery.Find(ctx, *discoveryPort)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			fmt.Fprintln(os.Stderr, "Usage: client [--addr <host:port>] [--name <name>]")
			fmt.Fprintln(os.Stderr, "  Example: client --addr 192.168.1.5:9999 --name Alice")
			os.Exit(1)
		}
		fmt.Printf("Found %s's game on stage %s\n", room.Host, room.Stage)
		*addr = room.GameAddr
	}

	fmt.Printf("Connecting to %s as %s...\n", *addr, *name)

	client, err := network.NewClient(*addr, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("Connected as %s (player %s)\n", client.Owner(), client.PlayerID())
	fmt.Println("Starting TUI...")
	time.Sleep(500 * time.Millisecond)

	p := tea.NewProgram(ui.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
