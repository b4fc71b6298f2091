package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/config"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminUsername string
	adminPassword string
)

// createAdminCmd registers an administrator account
var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Register an administrator account.",
	Long: `Registers an administrator, the password must be strong enough.
The password may also be given in the SCHOOLHUB_ADMIN_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if conf.Database.Driver == config.DriverMemory {
			return errors.New("createadmin requires a persistent database.driver")
		}

		username := strings.TrimSpace(adminUsername)
		if username == "" {
			return errors.New("--username is required")
		}

		if adminPassword == "" {
			adminPassword = os.Getenv("SCHOOLHUB_ADMIN_PASSWORD")
		}

		if adminPassword == "" {
			return errors.New("--password is required")
		}

		ctx := context.Background()

		c, err := core.New(ctx, conf, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		acc, err := c.Enrollment().RegisterAdmin(ctx, username, []byte(adminPassword))
		if err != nil {
			return err
		}

		logger.Info("administrator created", zap.String("id", acc.ID.String()), zap.String("username", acc.Username))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "administrator username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "administrator password")
}
