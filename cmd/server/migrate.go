package main

import (
	"errors"

	"github.com/fadilmartias/cv-assessor/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoDatabase = errors.New("database is not configured (set DB_HOST and DB_NAME)")

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the quiz_sessions and jobs tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !config.LoadDBConfig().Enabled() {
			return errNoDatabase
		}
		db, err := ConnectDB(log)
		if err != nil {
			return err
		}
		if err := migrate(db); err != nil {
			return err
		}
		log.Info("migration done", zap.String("database", config.LoadDBConfig().Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
