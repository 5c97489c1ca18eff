package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/study-planner-api/api/swagger"
	"github.com/noah-isme/study-planner-api/cmd/planner/commands"
)

// @title Study Planner API
// @version 1.0.0
// @description Homework and exam planner with live multi-tab sync
// @BasePath /api/v1
// @schemes http

func main() {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Study planner sync service",
		Long:  "Serves the study planner API and runs maintenance tasks against the same store.",
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewResetCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("command failed: %v", err)
		os.Exit(1)
	}
}
