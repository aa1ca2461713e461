package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
)

//go:embed config/migrations/*/*.sql
var embedMigrations embed.FS

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	bootLogger := log.NewIPFSLogger("ogmios", log.LevelInfo)
	config, err := LoadConfig(bootLogger)
	if err != nil {
		bootLogger.Fatal("failed to load configuration", "error", err)
	}

	logger := log.New(config.Log).WithName("ogmios")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.SetContextLogger(ctx, logger)

	if err := runCli(ctx, config, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		stop()
		os.Exit(1)
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: ogmios <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.description)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "watch", "follow the mempool over a websocket connection")
	fmt.Fprintf(w, "  %-10s %s\n", "export", "export recorded mempool transactions as CSV")
	fmt.Fprintf(w, "  %-10s %s\n", "console", "interactive session over a websocket connection")
}
