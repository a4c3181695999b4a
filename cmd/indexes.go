package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"gramsetu-be/config"
	"gramsetu-be/store"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes the server relies on",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StoreDriver != config.DriverMongo {
			return errors.New("indexes requires STORE_DRIVER=mongo")
		}

		client, db, err := config.ConnectDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(cmd.Context())

		if err := store.EnsureIndexes(cmd.Context(), db); err != nil {
			return fmt.Errorf("create indexes: %w", err)
		}
		slog.Info("indexes ensured", "database", cfg.MongoDatabase)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
