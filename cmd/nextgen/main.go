package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	nextgen "github.com/totegamma/nextgen-portal"
	"github.com/totegamma/nextgen-portal/client"
	"github.com/totegamma/nextgen-portal/internal/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nextgen",
	Short: "Portal gateway for the federated data catalog",
	Long: `nextgen serves the portal API in front of the search and catalog
services and offers the same searches from the command line.

Service URLs come from the config file or from API_SEARCH_SERVICE_URL and
API_CATALOG_SERVICE_URL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("NEXTGEN_CONFIG"), "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, searchCmd, healthCmd, idCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// stderrNotifier prints the toasts a browser would have shown.
type stderrNotifier struct {
	w io.Writer
}

func (n stderrNotifier) Notify(ctx context.Context, severity nextgen.Severity, message string) {
	fmt.Fprintf(n.w, "[%s] %s\n", severity, message)
}

// newCLIClient builds a gateway client for one-shot commands. Failures are
// propagated so that the process exit code reflects them.
func newCLIClient(cmd *cobra.Command) (*client.Client, config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	cc := conf.ClientConfig()
	cc.FailurePolicy = client.PolicyPropagate

	opts := []client.Option{client.WithNotifier(stderrNotifier{w: cmd.ErrOrStderr()})}
	if token := os.Getenv("NEXTGEN_ACCESS_TOKEN"); token != "" {
		cc.AttachBearer = true
		opts = append(opts, client.WithTokenStore(client.NewMemoryTokenStore(token)))
	}
	return client.New(cc, opts...), conf, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
