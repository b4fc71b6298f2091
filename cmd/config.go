package cmd

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/sebastiaanschool/schoolhub/internal/config"
	"github.com/spf13/cobra"
)

// configCmd dumps the resolved configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration.",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

				if conf.Auth.Secret != "" {
			conf.Auth.Secret = "********"
		}

		spew.Fdump(cmd.OutOrStdout(), conf)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
