package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Schoolhub server.",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// cancelling on interrupt for a graceful shutdown
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		go func() {
			select {
			case <-sig:
				cancel()
			case <-ctx.Done():
			}
		}()

		c, err := core.New(ctx, conf, logger)
		if err != nil {
			return err
		}

		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("failed to close core", zap.Error(err))
			}
		}()

		return server.Run(ctx, c, conf.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
