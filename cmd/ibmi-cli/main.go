// Command ibmi-cli is a thin demonstration client for the ibmi package: a
// handful of cobra subcommands wired to real session configuration via
// viper and logrus for output, not a supported product interface.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jguillaumes/go-ibmi/ibmi"
)

var log = logrus.StandardLogger()

var rootCmd = &cobra.Command{
	Use:   "ibmi-cli",
	Short: "demonstration client for the IBM i host-server protocol",
}

func init() {
	rootCmd.PersistentFlags().String("host", "", "IBM i host name or address")
	rootCmd.PersistentFlags().String("user", "", "user profile")
	rootCmd.PersistentFlags().String("password", "", "password")
	rootCmd.PersistentFlags().Bool("tls", false, "connect over TLS")
	rootCmd.PersistentFlags().Bool("tls-accept-any", false, "accept any TLS certificate (insecure, explicit opt-in only)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace|debug|info|warn|error)")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		log.WithError(err).Fatal("bind flags")
	}
	viper.SetEnvPrefix("IBMI")
	viper.AutomaticEnv()

	rootCmd.AddCommand(callCommandCmd, callProgramCmd, listUsersCmd)
}

// connect builds a Session from the bound viper configuration and runs its
// handshake.
func connect() (*ibmi.Session, error) {
	if level, err := logrus.ParseLevel(viper.GetString("log-level")); err == nil {
		log.SetLevel(level)
	}

	config := ibmi.ConnectionConfig{
		Host:         viper.GetString("host"),
		UserName:     viper.GetString("user"),
		Password:     viper.GetString("password"),
		TLSEnabled:   viper.GetBool("tls"),
		TLSAcceptAny: viper.GetBool("tls-accept-any"),
	}

	sess := ibmi.NewSession(config, log)
	if err := sess.Connect(); err != nil {
		return nil, err
	}
	return sess, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("ibmi-cli failed")
		os.Exit(1)
	}
}
