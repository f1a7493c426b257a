package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/IrishAnn-code/HomeLibrary/internal/config"
	"github.com/IrishAnn-code/HomeLibrary/internal/store/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := sqlite.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := sqlite.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Printf("schema up to date at %s", cfg.DatabaseURL)
			return nil
		},
	}
}
