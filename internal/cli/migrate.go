package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roboco-io/pubrender/internal/store/pgstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema migrations",
	Long: `Create or upgrade the publications, events, locations and umoor tables.

Only the postgres store backend has a schema; the file backend needs no
migration.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Backend != "postgres" {
		return fmt.Errorf("migrate needs store.backend postgres, have %q", cfg.Store.Backend)
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	s, ok := a.store.(*pgstore.Store)
	if !ok {
		return fmt.Errorf("store is not postgres")
	}
	if err := s.Migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}
