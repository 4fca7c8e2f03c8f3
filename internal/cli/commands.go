package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crgimenes/wry"
	"github.com/crgimenes/wry/dl"
	"github.com/crgimenes/wry/internal/stage"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Load the library and call wry_test_simple",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := wry.Probe(a.cfg.Library, a.loadOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Result: %d (expected %d)\n", result, wry.ProbeExpected)
			if result != wry.ProbeExpected {
				return fmt.Errorf("probe: unexpected result %d", result)
			}
			return nil
		},
	}
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call N",
		Short: "Call wry_test_with_param with a 32-bit integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid argument %q: %w", args[0], err)
			}

			b, err := wry.Open(a.cfg.Library, a.loadOptions()...)
			if err != nil {
				return err
			}
			result, err := b.TestWithParam(int32(n))
			if err != nil {
				return errors.Join(err, b.Close())
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return b.Close()
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [url]",
		Short: "Open a backend window on url and wait until it is closed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var url string
			if len(args) > 0 {
				url = args[0]
			}

			b, err := wry.Open(a.cfg.Library, a.loadOptions()...)
			if err != nil {
				return err
			}
			a.log.Info("opening window", slog.String("library", b.Path()), slog.String("url", url))
			return errors.Join(b.CreateAndRun(url), b.Close())
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve DIR",
		Short: "Serve DIR over loopback HTTP and show it in a backend window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", args[0])
			}

			return wry.AppWindow(wry.AppOptions{
				Library:     a.cfg.Library,
				LoadOptions: a.loadOptions(),
				Addr:        addr,
				Handler:     http.FileServer(http.Dir(args[0])),
				OnReady: func(url string) {
					fmt.Fprintf(cmd.OutOrStdout(), "serving %s at %s\n", args[0], url)
				},
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:0", "listen address")
	return cmd
}

func newSymbolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols NAME...",
		Short: "Report which symbols the library exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Library
			if path == "" {
				path = wry.LibraryPath()
			}

			var missing []string
			err := dl.With(path, func(lib *dl.Library) error {
				for _, name := range args {
					status := "ok"
					if _, err := lib.Resolve(name); err != nil {
						if !errors.Is(err, dl.ErrSymbolNotFound) {
							return err
						}
						status = "missing"
						missing = append(missing, name)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, status)
				}
				return nil
			}, a.loadOptions()...)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return fmt.Errorf("%d of %d symbols missing", len(missing), len(args))
			}
			return nil
		},
	}
}

func newChecksumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum FILE",
		Short: "Print the BLAKE2b-256 digest of a library for --checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := stage.SumFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wryctl %s\n", version)
		},
	}
}
