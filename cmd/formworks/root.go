package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "formworks",
	Short: "Form builder backend with versioned schemas and dynamic validation",
	Long: `Formworks is a self-hosted form builder backend.

Admins define form schemas (typed fields with validation rules), publish
them, and collect submissions from the public API. Editing a form that
already has submissions produces a new version; old submissions stay
paired with the field set they were validated against.

Quick start:
  formworks serve   # Start the API server

Management:
  formworks admin   # Manage admin accounts`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "formworks.yaml", "config file path")
}
