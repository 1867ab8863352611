package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/cmsinfo/internal/api/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the cmsinfo REST API.

Endpoints:
  POST /api/v1/cms/info   Interpret a CMS object (JSON or raw body)
  GET  /health, /ready    Liveness and readiness
  GET  /metrics           Prometheus metrics

Settings come from --config, then CMSINFO_* environment variables, then flags.

Examples:
  # Listen on localhost:8080
  cmsinfo serve --host 127.0.0.1 --port 8080

  # TLS with an audit log
  cmsinfo serve --tls-cert server.crt --tls-key server.key --audit-log audit.jsonl`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost    string
	servePort    int
	serveTLSCert string
	serveTLSKey  string
)

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&serveHost, "host", "", "Address to bind to")
	flags.IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8443)")
	flags.StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file")
	flags.StringVar(&serveTLSKey, "tls-key", "", "TLS private key file")
}

// serveConfig applies the serve flags on top of the loaded configuration.
func serveConfig(cmd *cobra.Command) (*server.Config, error) {
	cfg := *appConfig
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = serveHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = servePort
	}
	if flags.Changed("tls-cert") {
		cfg.Server.TLSCert = serveTLSCert
	}
	if flags.Changed("tls-key") {
		cfg.Server.TLSKey = serveTLSKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	return server.FromConfig(&cfg), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig(cmd)
	if err != nil {
		return err
	}

	srv := server.New(cfg, version, logger.WithName("server"))
	srv.SetOutput(cmd.OutOrStdout())
	return srv.Start()
}
