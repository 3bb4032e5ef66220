package cmd

import (
	"log"

	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/internal/app"
	"github.com/spf13/cobra"
)

// migrateCmd runs the schema migration and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migration",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		container := app.NewContainer(cfg)
		if err := container.InitDatabase(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer container.Close()

		if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
			log.Fatalf("Failed to auto migrate database: %v", err)
		}

		if password, err := container.AccountsRepo.CreateDefaultAdminUser(); err != nil {
			log.Fatalf("Failed to create default admin user: %v", err)
		} else if password != "" {
			log.Printf("Created default admin user 'admin' with password: %s", password)
			log.Println("IMPORTANT: change the default admin password immediately")
		}

		log.Println("Database migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
