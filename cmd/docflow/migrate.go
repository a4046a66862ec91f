package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docflow/internal/database"
	"docflow/internal/database/migration"
	vaultpg "docflow/internal/vault/postgres"
)

var (
	migrateSecretID  string
	migrateSecretEnv string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the webhook_secrets table and optionally seed a secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled() {
			return eris.New("migrate requires DB_HOST")
		}

		ctx := cmd.Context()
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return eris.Wrap(err, "connect database")
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, zap.L(), cfg.Database.Host); err != nil {
			return err
		}

		if migrateSecretID == "" {
			return nil
		}
		secret, ok := os.LookupEnv(migrateSecretEnv)
		if !ok {
			return eris.Errorf("secret value env %s is not set", migrateSecretEnv)
		}
		if err := vaultpg.NewSecretPostgres(db).PutSecret(ctx, migrateSecretID, secret); err != nil {
			return err
		}
		zap.L().Info("secret stored", zap.String("secret_id", migrateSecretID))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSecretID, "seed-secret-id", "", "store a webhook secret under this id after migrating")
	migrateCmd.Flags().StringVar(&migrateSecretEnv, "seed-secret-env", "WEBHOOK_SECRET", "environment variable holding the secret to seed")
	rootCmd.AddCommand(migrateCmd)
}
