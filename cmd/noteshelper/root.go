package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "noteshelper",
	Short:   "Turn photos of handwritten study notes into exam-preparation commentary",
	Long:    `noteshelper runs the notes annotation service: uploaded note images are re-encoded, read by OCR, and turned into markdown study commentary that is persisted and retrievable by identifier.`,
	Version: version,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
