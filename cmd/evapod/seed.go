package main

import (
	"evapod/internal/config"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap admin account from SEED_ADMIN_* settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		return config.NewSeeder(db, cfg.Seed, log).Run(cmd.Context())
	},
}
