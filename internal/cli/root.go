// Package cli wires configuration, logging and the request controller
// behind the ragclient commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ragclient/internal/api"
	"ragclient/internal/config"
	"ragclient/internal/controller"
	"ragclient/internal/logging"
)

// version is set at build time with -ldflags "-X ragclient/internal/cli.version=...".
var version = "dev"

var (
	configPath  string
	apiURL      string
	flagTimeout time.Duration
	verbose     bool
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "ragclient",
	Short: "Ingest documents into a RAG service and ask it questions",
	Long: `ragclient talks to a retrieval-augmented knowledge service over HTTP.

Run without a subcommand to open the interactive terminal UI, or use the
ingest and query commands for one-shot requests.

The service address is read from the config file, then RAG_API_URL
(or VITE_API_URL), then --api-url. It defaults to http://127.0.0.1:8000.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./config.yaml or ~/.config/ragclient/config.yaml)")
	pf.StringVar(&apiURL, "api-url", "", "base URL of the RAG service")
	pf.DurationVar(&flagTimeout, "timeout", 0, "per-request timeout (0 waits indefinitely)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// Execute runs the root command. Interrupt and terminate signals cancel the
// command context, which aborts any request in flight.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// session is what every command needs to talk to the service.
type session struct {
	logger *slog.Logger
	ctrl   *controller.RequestController
}

func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.ApplyEnv(cfg, os.Getenv)
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}

// newSession builds the API client and controller for cfg. Logs go to logOut.
func newSession(cfg *config.AppConfig, logOut io.Writer, opts ...controller.Option) (*session, error) {
	logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	timeout := cfg.API.Timeout()
	if flagTimeout > 0 {
		timeout = flagTimeout
	}
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("session ready", "base_url", client.BaseURL(), "timeout", timeout)

	opts = append([]controller.Option{controller.WithLogger(logger)}, opts...)
	return &session{
		logger: logger,
		ctrl:   controller.New(client, opts...),
	}, nil
}
