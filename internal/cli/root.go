// Package cli provides the command-line interface for wryctl.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crgimenes/wry/dl"
)

// app carries state from the root command to its subcommands.
type app struct {
	cfg *Config
	log *slog.Logger
}

func (a *app) loadOptions() []dl.Option {
	return []dl.Option{dl.WithLogger(a.log), dl.WithChecksum(a.cfg.Checksum)}
}

// NewRootCmd creates the root command for wryctl.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "wryctl",
		Short:         "Load and drive the wry webview backend library",
		Long:          `wryctl loads the wry backend shared library at runtime and calls its exported entry points.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(viper.New(), cmd.Root().PersistentFlags(), configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = setupLogging(cmd.ErrOrStderr(), cfg.Debug)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/wryctl/config.yaml)")
	flags.StringP("library", "l", "", "backend library path (default: search $WRY_PATH and the executable directory)")
	flags.String("checksum", "", "expected BLAKE2b-256 digest of the library")
	flags.Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newProbeCmd(a),
		newCallCmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newSymbolsCmd(a),
		newChecksumCmd(),
		newVersionCmd(version),
	)
	return rootCmd
}

// Execute runs the root command with args and writes output to out and
// errors to errOut.
func Execute(version string, args []string, out, errOut io.Writer) error {
	cmd := NewRootCmd(version)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.Execute()
}
