// Package cmd wires the relayerd CLI: cobra for command structure, viper
// for layered configuration (flags > env > config file), following the
// teacher's cmd/txd convention of a thin main.go delegating into this
// package's Execute.
package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix mirrors the teacher's TXD prefix convention
// (cmd/txd/main.go's txChainEnvPrefix), adapted to this binary's name.
const envPrefix = "RELAYERD"

var cfgFile string

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the relayerd root command and attaches its
// subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relayerd",
		Short: "Relay IBC packets between two chains",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.relayerd/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "plain", "log output format (plain, json)")

	root.AddCommand(newStartCmd())
	return root
}

func initConfig(cmd *cobra.Command) error {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "resolve home directory")
		}
		v.AddConfigPath(home + "/.relayerd")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return errors.Wrap(err, "read config")
		}
	}

	return v.BindPFlags(cmd.Flags())
}
