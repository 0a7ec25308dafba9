package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/eshaffer321/constructcycle-go/cmd/tui/ui"
	"github.com/eshaffer321/constructcycle-go/internal/config"
	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
)

func main() {
	logFile := flag.String("log", "", "write client logs to this file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The alt screen owns stdout, so logs only go to a file when asked
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			fmt.Printf("Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}

	opts, cleanup := cfg.ClientOptions(logOut)
	defer cleanup()

	nav := &ui.ProgramNavigator{}
	opts.Navigator = nav

	client, err := constructcycle.NewClient(opts)
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	p := tea.NewProgram(
		ui.NewModel(client, opts.LoginPath),
		tea.WithAltScreen(),
	)
	nav.Attach(p)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
