package cmd

import (
	"fmt"
	"os"

	"github.com/sebastiaanschool/schoolhub/internal/config"
	"github.com/sebastiaanschool/schoolhub/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "schoolhub",
	Short: "School community app backend.",
	Long: `Serves the agenda, bulletins, newsletters and contacts of a school
along with self-enrollment and push settings of the mobile app.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.schoolhub.yaml)")
}

// loadConfig resolves the configuration and the primary logger
func loadConfig() (config.Config, *zap.Logger, error) {
	conf, err := config.Load(cfgFile)
	if err != nil {
		return conf, nil, err
	}

	logger, err := util.DefaultLogger(conf.Log.Debug, conf.Log.Dir)
	if err != nil {
		return conf, nil, err
	}

	return conf, logger, nil
}
