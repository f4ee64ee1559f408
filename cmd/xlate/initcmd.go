package main

import (
	"fmt"
	"os"

	"xlate/internal/config"

	"github.com/spf13/cobra"
)

var initDir string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default xlate.yaml",
	Long:  "Write the default configuration to xlate.yaml so it can be edited in place.",
	Args:  cobra.NoArgs,
	Run:   runInit,
}

func init() {
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write xlate.yaml into")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	if err := config.DefaultConfig().Save(initDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s/xlate.yaml\n", initDir)
}
