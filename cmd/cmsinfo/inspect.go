package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/cmsinfo/internal/audit"
	"github.com/remiblancher/cmsinfo/internal/cli"
	"github.com/remiblancher/cmsinfo/pkg/cms"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Describe a CMS ContentInfo",
	Long: `Decode a CMS ContentInfo and print its description.

The input may be DER, BER or PEM (PKCS7, CMS or "PKCS #7 SIGNED DATA" blocks).
Use "-" to read from stdin.

Modes:
  cms    Standard signed attributes (default)
  cades  Also reports signing-certificate-v2 and signature-policy-id

Examples:
  # Describe an enveloped message
  cmsinfo inspect message.p7m

  # YAML report in English written to a file
  cmsinfo inspect message.p7m --lang en --format yaml --out report.yaml

  # Read from stdin
  openssl cms -sign ... -outform DER | cmsinfo inspect -`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var (
	inspectMode    string
	inspectFormat  string
	inspectLang    string
	inspectOut     string
	inspectNoColor bool
)

func init() {
	flags := inspectCmd.Flags()
	flags.StringVar(&inspectMode, "mode", "", "Interpretation mode: cms, cades (default from config)")
	flags.StringVar(&inspectFormat, "format", "", "Output format: text, json, yaml, cbor (default from config)")
	flags.StringVar(&inspectLang, "lang", "", "Label language: es, en (default from config)")
	flags.StringVarP(&inspectOut, "out", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVar(&inspectNoColor, "no-color", false, "Disable colored output")
}

// inspectOptions resolves flags over the loaded configuration.
func inspectOptions() (describe.Mode, describe.Format, describe.Language, error) {
	mode, format, lang := appConfig.Mode(), appConfig.Format(), appConfig.Language()
	var err error
	if inspectMode != "" {
		if mode, err = describe.ParseMode(inspectMode); err != nil {
			return mode, format, lang, err
		}
	}
	if inspectFormat != "" {
		if format, err = describe.ParseFormat(inspectFormat); err != nil {
			return mode, format, lang, err
		}
	}
	if inspectLang != "" {
		if lang, err = describe.ParseLanguage(inspectLang); err != nil {
			return mode, format, lang, err
		}
	}
	return mode, format, lang, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	mode, format, lang, err := inspectOptions()
	if err != nil {
		return err
	}
	if inspectNoColor {
		cli.SetColor(false)
	}

	input, err := cli.ReadInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var d *describe.Descriptor
	data, err := cms.Unarmor(input)
	if err == nil {
		d, err = describe.Interpret(data, &describe.Options{
			Mode:   mode,
			Logger: logger.WithName("inspect").WithValues("file", path),
		})
	}

	contentType := ""
	if d != nil {
		contentType = d.ContentType
	}
	if auditErr := audit.LogInspection(audit.Inspection{
		Input:       input,
		Path:        path,
		ContentType: contentType,
		Mode:        mode.String(),
		Source:      "cli",
		Err:         err,
	}); auditErr != nil {
		return auditErr
	}
	if err != nil {
		return fmt.Errorf("cannot interpret this data: %w", err)
	}

	if inspectOut != "" {
		if err := cli.WriteFile(inspectOut, d, format, lang); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", inspectOut)
		return nil
	}
	return cli.WriteReport(cmd.OutOrStdout(), d, format, lang)
}
