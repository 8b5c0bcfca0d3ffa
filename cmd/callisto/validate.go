package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
)

var validateFlags struct {
	format string
}

// configSummary is the validated-configuration report.
type configSummary struct {
	ListenAddress string `json:"listen_address"`
	MaxSessions   int    `json:"max_sessions"`
	SessionTTL    string `json:"session_ttl"`
	ClientProfile string `json:"client_profile"`
	MaxHops       int    `json:"max_hops"`
	AuditEnabled  bool   `json:"audit_enabled"`
	AuditBackend  string `json:"audit_backend,omitempty"`
	AuthEnabled   bool   `json:"auth_enabled"`
	AuthKeys      int    `json:"auth_keys"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting the server.

The validate command loads the configuration file, applies defaults and
environment overrides, and reports the effective settings. It exits with
a non-zero status when the configuration is invalid.

Examples:
  # Validate the default config file
  callisto validate

  # Validate a specific file
  callisto validate --config /etc/callisto/config.yaml

  # Print the effective settings as JSON
  callisto validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	summary := configSummary{
		ListenAddress: cfg.Server.ListenAddress,
		MaxSessions:   cfg.Sessions.MaxSessions,
		SessionTTL:    cfg.Sessions.TTL.String(),
		ClientProfile: cfg.Client.Profile,
		MaxHops:       cfg.Redirects.MaxHops,
		AuditEnabled:  cfg.Audit.Enabled,
		AuthEnabled:   cfg.Auth.Enabled,
		AuthKeys:      len(cfg.Auth.Keys),
	}
	if cfg.Audit.Enabled {
		summary.AuditBackend = cfg.Audit.Backend
	}

	if validateFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(cmd.OutOrStdout(), summary)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Listen address: %s\n", summary.ListenAddress)
	fmt.Fprintf(out, "Sessions: max %d, ttl %s\n", summary.MaxSessions, summary.SessionTTL)
	fmt.Fprintf(out, "Client profile: %s\n", summary.ClientProfile)
	fmt.Fprintf(out, "Redirect limit: %d hops\n", summary.MaxHops)
	if summary.AuditEnabled {
		fmt.Fprintf(out, "Audit: enabled (%s)\n", summary.AuditBackend)
	} else {
		fmt.Fprintln(out, "Audit: disabled")
	}
	if summary.AuthEnabled {
		fmt.Fprintf(out, "Auth: enabled (%d keys)\n", summary.AuthKeys)
	} else {
		fmt.Fprintln(out, "Auth: disabled")
	}

	return nil
}
