package main

import (
	"evapod/internal/adapters/persistence/models"
	"evapod/internal/config"
	"evapod/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Shared state initialized by PersistentPreRunE
var (
	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "evapod",
	Short:         "EVAPOD evangelism reporting backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		log, err = logger.New(cfg.IsDev())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// openDatabase connects and migrates. Every subcommand needs the schema.
func openDatabase() (*gorm.DB, error) {
	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		_ = config.CloseDatabase(db)
		return nil, err
	}
	log.Info("database migration completed")
	return db, nil
}
