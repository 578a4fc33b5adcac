package cmd

import (
	"fmt"

	"github.com/niels/tinyhttpd/pkg/config"
	"github.com/niels/tinyhttpd/pkg/logging"
	"github.com/niels/tinyhttpd/pkg/version"
	"github.com/spf13/cobra"
)

// annotationConsoleLog marks commands whose logs go to stderr even without
// --debug
const annotationConsoleLog = "console-log"

var (
	configPath  string
	debug       bool
	showVersion bool
	cfg         *config.Config
)

// NewRootCmd creates the root command for tinyhttpd
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   version.AppName,
		Short: version.Description,
		Long: fmt.Sprintf(`%s - %s

Serves index.html, health.html and other files from the public directory,
and the shipping orders under /api/shipping/orders. Every connection carries
exactly one request and one response.
`, version.AppName, version.Description),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg = config.LoadOrDefault(configPath)
			} else {
				cfg = config.Default()
			}

			var console = cmd.ErrOrStderr()
			if cmd.Annotations[annotationConsoleLog] != "true" {
				console = nil
			}
			logging.InitGlobalLogger(debug, cfg, console)

			if debug {
				logging.Debug("Debug logging enabled")
			}
			if configPath != "" {
				logging.InfoWith("Configuration loaded", map[string]interface{}{
					"path": configPath,
				})
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version information")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGetCmd())

	return rootCmd
}
