package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/artcc/contribdeck/internal/commands"
	"github.com/artcc/contribdeck/internal/config"
)

func main() {
	cfgPath := os.Getenv("CONTRIBDECK_CONFIG")
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var args []string
	if len(os.Args) > 1 {
		args = os.Args[1:]
	}

	switch {
	case len(args) > 0 && args[0] == "render":
		err = commands.Render(ctx, args[1:], cfg, os.Stdout)
	case len(args) > 0 && args[0] == "preview":
		err = commands.Preview(ctx, args[1:], cfg)
	default:
		err = commands.Plugin(ctx, args, cfg)
	}
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
