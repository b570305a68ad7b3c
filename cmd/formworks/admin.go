package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/formworks/formworks/adapters/clock"
	"github.com/formworks/formworks/adapters/hasher"
	"github.com/formworks/formworks/adapters/idgen"
	"github.com/formworks/formworks/adapters/sqlite"
	"github.com/formworks/formworks/app"
	"github.com/formworks/formworks/config"
	"github.com/rs/zerolog"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
	Long: `Manage Formworks admin accounts.

Admins authenticate against the admin API to define forms, manage fields,
and export submissions.

Examples:
  formworks admin list
  formworks admin create --username=editor --email=editor@example.com

For local dev without a config file, use --db to specify the database directly:
  formworks admin list --db formworks.db`,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all admin accounts",
	RunE:  runAdminList,
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new admin account",
	Long: `Create a new admin account.

If --password is not provided, you will be prompted to enter it securely.

Examples:
  formworks admin create --username=editor
  formworks admin create --username=editor --password=secret`,
	RunE: runAdminCreate,
}

var (
	adminDBPath   string
	adminUsername string
	adminPassword string
	adminEmail    string
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCmd.PersistentFlags().StringVar(&adminDBPath, "db", "", "database path (overrides config)")
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "admin username (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (prompted if omitted)")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	adminCreateCmd.MarkFlagRequired("username")
}

func openAdminDB() (*sqlite.DB, error) {
	path := adminDBPath
	if path == "" {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return nil, err
		}
		path = cfg.Database.Path
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runAdminList(cmd *cobra.Command, args []string) error {
	db, err := openAdminDB()
	if err != nil {
		return err
	}
	defer db.Close()

	admins, err := sqlite.NewAdminStore(db).List(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tEMAIL\tCREATED")
	for _, a := range admins {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Username, a.Email, a.CreatedAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	password := adminPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	db, err := openAdminDB()
	if err != nil {
		return err
	}
	defer db.Close()

	auth := app.NewAuthService(app.AuthDeps{
		Admins: sqlite.NewAdminStore(db),
		Hasher: hasher.NewBcrypt(0),
		Clock:  clock.Real{},
		IDGen:  idgen.UUID{},
		Logger: zerolog.Nop(),
	})

	admin, err := auth.CreateAdmin(context.Background(), adminUsername, password, adminEmail)
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %q (%s)\n", admin.Username, admin.ID)
	return nil
}
