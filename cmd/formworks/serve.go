package main

import (
	"github.com/spf13/cobra"

	"github.com/formworks/formworks/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Formworks API server",
	Long: `Start the Formworks API server.

The server will:
  - Load configuration from formworks.yaml (or --config)
  - Or load configuration from FORMWORKS_* environment variables
  - Open and migrate the SQLite database
  - Seed the bootstrap admin account on first run
  - Serve the admin API, public form API, /health, and /metrics

Environment variables (for container deployments):
  FORMWORKS_SERVER_PORT      - Server port (default: 8080)
  FORMWORKS_DATABASE_PATH    - SQLite path (default: formworks.db)
  FORMWORKS_AUTH_JWT_SECRET  - Token signing secret
  FORMWORKS_ADMIN_USERNAME   - Bootstrap admin username (default: admin)
  FORMWORKS_ADMIN_PASSWORD   - Bootstrap admin password
  FORMWORKS_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  formworks serve
  formworks serve --config /etc/formworks/config.yaml

  # Docker (env vars only):
  FORMWORKS_AUTH_JWT_SECRET=... formworks serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(cfgFile)
	if err != nil {
		return err
	}
	return app.Run()
}
