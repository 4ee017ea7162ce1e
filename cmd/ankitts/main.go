package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TF338/upload-anki-tts/internal/cli"
	"github.com/TF338/upload-anki-tts/internal/models"
	"github.com/TF338/upload-anki-tts/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels()
	}

	proc, err := processor.NewProcessor(flags)
	if err != nil {
		return err
	}

	if err := proc.Run(context.Background()); err != nil {
		return err
	}

	if flags.DryRun {
		fmt.Printf("\nDone (dry run). No notes were uploaded and no input files were modified.\n")
	} else {
		fmt.Printf("\nDone.\n")
	}
	return nil
}
