// Command rigsim runs camera rig scenes, either headless, printing the
// brain output frame by frame, or in a window with a debug view.
//
// Every flag can also be set from the environment with the RIGSIM_
// prefix, like RIGSIM_LOG_LEVEL=debug.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	settings := viper.New()
	settings.SetEnvPrefix("RIGSIM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	root := &cobra.Command{
		Use:           "rigsim",
		Short:         "Simulate camera rig scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "log level: trace, debug, info, warn, error")
	root.PersistentFlags().Bool("log-json", false, "log as JSON instead of console text")
	if err := settings.BindPFlags(root.PersistentFlags()); err != nil {
		panic(err)
	}

	root.AddCommand(
		newRunCommand(settings),
		newValidateCommand(settings),
		newViewCommand(settings),
	)
	return root
}

// Binds the command flags to the settings and returns the logger they
// configure.
func setup(cmd *cobra.Command, settings *viper.Viper) (zerolog.Logger, error) {
	if err := settings.BindPFlags(cmd.Flags()); err != nil {
		return zerolog.Nop(), err
	}
	level, err := zerolog.ParseLevel(settings.GetString("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("rigsim: %w", err)
	}
	if settings.GetBool("log-json") {
		return zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Logger(), nil
	}
	writer := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
