// Command iconctl hosts the icon bridge without the desktop shell and sends
// icon change requests to a running host.
package main

import (
	"fmt"
	"os"
	"time"

	"iconswitch/internal/config"
	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	hostURL  string
	timeout  time.Duration
	simulate bool

	cfg    *config.Config
	logger logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "iconctl",
	Short: "Switch the application icon through the app_icon bridge",
	Long: `iconctl talks to an icon bridge host over WebSocket.

Run "iconctl serve" to host the bridge on this machine, then use
"iconctl set NAME" or "iconctl reset" to switch icons.

Configuration is read from ICONSWITCH_* environment variables;
flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		if cmd.Flags().Changed("url") {
			cfg.HostURL = hostURL
		}
		if cmd.Flags().Changed("timeout") {
			cfg.RequestTimeout = timeout
		}
		if simulate {
			cfg.Simulate = true
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		l, err := logging.NewLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		bridgeerrors.SetDefaultRetryLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if z, ok := logger.(*logging.ZapLogger); ok {
			_ = z.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&hostURL, "url", "", "Bridge host URL (default: ICONSWITCH_HOST_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Give up waiting for an outcome after this long (0 waits indefinitely)")

	serveCmd.Flags().BoolVar(&simulate, "simulate", false, "Use the in-memory icon host instead of the OS")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: ICONSWITCH_LISTEN_ADDR)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(variantsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
