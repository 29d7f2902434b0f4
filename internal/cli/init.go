package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mender/internal/config"
	"github.com/example/mender/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the mender database and config",
		Long:  `Initialize the mender database at ~/.mender/mender.db and write a default .mender/config.json in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing mender database at %s\n", dbPath)

			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Println("✓ Database initialized successfully")

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			if _, err := config.Load(cwd); err == nil {
				fmt.Println("✓ Config already present, leaving it untouched")
			} else {
				if err := config.Save(cwd, config.Default()); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Println("✓ Config created at .mender/config.json")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  set fix_command and test_command in .mender/config.json")
			fmt.Println("  mender heal --mission MISSION-001 --evidence \"...\"")

			return nil
		},
	}
}
