// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-engine/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the library to MCP clients over stdio",
	Long: `Serve speaks the Model Context Protocol (newline-delimited JSON-RPC 2.0) on
stdin and stdout. It offers search, formatting and statistics tools, the
library as resources, and bibliography prompts. The snapshot is reloaded
when its modification time changes. Logs go to stderr.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("debug", false, "log at debug level")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataPath := loadConfig().DataPath
	server := mcp.NewServer(dataPath, version, logger)
	logger.Info("serving", "data", dataPath, "version", version)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
