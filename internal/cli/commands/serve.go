package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/lineagemap/internal/cli/config"
	"github.com/leapstack-labs/lineagemap/internal/server"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Host      string
	Port      int
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the lineage visualization server",
		Long: `Start a local web server providing an interactive lineage visualization.

Paste a SQL statement into the page to see its dependency graph: raw
sources, CTEs, and the write target, colored by classification.`,
		Example: `  # Start on the default port
  lineagemap serve

  # Start on a custom port
  lineagemap serve --port 3000

  # Start without auto-opening a browser
  lineagemap serve --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Host to bind (default: 127.0.0.1)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8000)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	// CLI flags override config file
	host := cfg.Host
	if opts.Host != "" {
		host = opts.Host
	}
	port := cfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	srv := server.New(server.Config{
		Host:   host,
		Port:   port,
		Logger: logger,
	})

	if !opts.NoBrowser {
		url := fmt.Sprintf("http://%s", srv.Addr())
		go openBrowser(url)
	}

	return srv.Serve(cmd.Context())
}

// openBrowser opens the given URL in the default browser. Failures are
// ignored; the URL is already logged at startup.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}
	_ = err
}
