package cli

import (
	"fmt"

	"github.com/AdamBeresnev/op-shuffle/internal/config"
	"github.com/AdamBeresnev/op-shuffle/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globalOptions) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dsn = cfg.DatabaseURL
			}

			database, err := db.Open(dsn)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(database.DB); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			g.logger(cmd).Info("migrations applied", "dsn", dsn)
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "db", "", "SQLite DSN, defaults to OP_SHUFFLE_DB")
	return cmd
}
