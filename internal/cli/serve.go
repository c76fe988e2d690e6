package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Expose /metrics (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LogicalX API server",
	Long:  `Start the LogicalX HTTP API at localhost:8086.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Override config from flags
	if serveHost != "" {
		config.API.Host = serveHost
	}
	if servePort > 0 {
		config.API.Port = servePort
	}
	if serveMetrics {
		config.Telemetry.Prometheus = true
	}
	if err := config.Validate(); err != nil {
		return err
	}

	d, err := openDaemon(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Serve(cmd.Context())
}
