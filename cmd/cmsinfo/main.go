// Command cmsinfo prints a human-readable interpretation of CMS (PKCS #7) objects.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/remiblancher/cmsinfo/internal/audit"
	"github.com/remiblancher/cmsinfo/internal/config"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	auditLogPath string
	configPath   string
	verbosity    int
)

// Loaded by PersistentPreRunE for every command.
var (
	appConfig *config.Config
	logger    logr.Logger = logr.Discard()
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the root command and closes the audit log. Cobra skips
// PersistentPostRunE when RunE fails, so the log is also closed here.
func execute() error {
	err := rootCmd.Execute()
	if cerr := audit.Close(); err == nil {
		err = cerr
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:   "cmsinfo",
	Short: "Human-readable interpretation of CMS (PKCS #7) objects",
	Long: `cmsinfo decodes a CMS ContentInfo and describes its structure: content type,
version, recipients, signers, algorithms and attributes.

All RFC 5652 content types are recognized, plus AuthEnvelopedData (RFC 5083),
CompressedData (RFC 3274) and the PKCS #7 SignedAndEnvelopedData.

Examples:
  # Describe a signature in Spanish (default)
  cmsinfo inspect document.p7s

  # English labels, CAdES attributes, JSON output
  cmsinfo inspect document.p7s --lang en --mode cades --format json

  # Run the HTTP API
  cmsinfo serve --config /etc/cmsinfo.yaml

  # Verify the audit log
  cmsinfo audit verify --log /var/log/cmsinfo/audit.jsonl`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg

		stdr.SetVerbosity(verbosity)
		logger = stdr.New(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))

		// Flag wins over config file and CMSINFO_AUDIT_LOG
		path := auditLogPath
		if path == "" {
			path = cfg.AuditLog
		}
		if path != "" {
			if err := audit.InitFile(path); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Close audit log
		return audit.Close()
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set "+config.EnvAuditLog+" env var)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML configuration file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (repeatable)")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(auditCmd)
}
