package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/audit"
	"mercator-hq/callisto/pkg/audit/storage"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
)

var auditFlags struct {
	backend   string
	timeRange string
	sessionID string
	apiKey    string
	method    string
	status    string
	limit     int
	offset    int
	format    string
	output    string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit trail",
	Long: `Query and export audit records of proxied requests.

The audit command provides access to the audit database for querying
and analyzing the proxied-request trail.

Examples:
  # Query a time range
  callisto audit query --time-range "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"

  # Filter by session
  callisto audit query --session "9f0c2a4e-..."

  # Export to JSON file
  callisto audit query --format json --output audit.json`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"

Examples:
  # Query a specific time range
  callisto audit query --time-range "2026-08-23T00:00:00Z/2026-08-24T00:00:00Z"

  # Filter by key name and method
  callisto audit query --api-key "ci" --method POST

  # Show only failed requests
  callisto audit query --status error`,
	RunE: queryAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd)

	auditQueryCmd.Flags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite, memory (uses config if not specified)")
	auditQueryCmd.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	auditQueryCmd.Flags().StringVar(&auditFlags.sessionID, "session", "", "filter by session ID")
	auditQueryCmd.Flags().StringVar(&auditFlags.apiKey, "api-key", "", "filter by API key name")
	auditQueryCmd.Flags().StringVar(&auditFlags.method, "method", "", "filter by HTTP method")
	auditQueryCmd.Flags().StringVar(&auditFlags.status, "status", "", "filter by outcome (success, error)")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", 100, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")
}

func queryAudit(cmd *cobra.Command, args []string) error {
	// Load config to get backend settings
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Determine backend from flag or config
	backendType := auditFlags.backend
	if backendType == "" {
		backendType = cfg.Audit.Backend
	}

	// Create storage backend. A memory backend is empty by definition but
	// stays selectable so the command degrades gracefully.
	var store audit.Storage
	switch backendType {
	case "sqlite":
		sqliteConfig := storage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Audit.SQLitePath
		store, err = storage.NewSQLiteStorage(sqliteConfig)
		if err != nil {
			return cli.NewCommandError("audit", fmt.Errorf("failed to create SQLite storage: %w", err))
		}
	case "memory":
		store = storage.NewMemoryStorage()
	default:
		return fmt.Errorf("unsupported backend: %s (supported: sqlite, memory)", backendType)
	}
	defer store.Close()

	// Build query
	query := &audit.Query{
		Limit:      auditFlags.limit,
		Offset:     auditFlags.offset,
		SessionID:  auditFlags.sessionID,
		APIKeyName: auditFlags.apiKey,
		Method:     auditFlags.method,
		Status:     auditFlags.status,
	}

	// Parse time range
	if auditFlags.timeRange != "" {
		parts := strings.Split(auditFlags.timeRange, "/")
		if len(parts) != 2 {
			return fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	// Execute query
	ctx := context.Background()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	// Output results
	var output io.Writer = os.Stdout
	if auditFlags.output != "" {
		f, err := os.Create(auditFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	switch auditFlags.format {
	case "json":
		return outputAuditJSON(output, records)
	default:
		return outputAuditText(output, records, query)
	}
}

func outputAuditJSON(output io.Writer, records []*audit.Record) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	result := map[string]any{
		"total_records": len(records),
		"records":       records,
	}

	return encoder.Encode(result)
}

func outputAuditText(output io.Writer, records []*audit.Record, query *audit.Query) error {
	fmt.Fprintln(output, "Querying audit records...")
	fmt.Fprintln(output)

	if query.StartTime != nil && query.EndTime != nil {
		fmt.Fprintf(output, "Time range: %s to %s\n",
			query.StartTime.Format(time.RFC3339),
			query.EndTime.Format(time.RFC3339))
	}
	fmt.Fprintf(output, "Total records: %d\n", len(records))
	fmt.Fprintln(output)

	if len(records) == 0 {
		fmt.Fprintln(output, "No records found.")
		return nil
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(output)
		}

		fmt.Fprintf(output, "Record ID: %s\n", record.ID)
		fmt.Fprintf(output, "Timestamp: %s\n", record.RequestTime.Format(time.RFC3339))
		fmt.Fprintf(output, "Request: %s %s\n", record.Method, record.TargetURL)
		if record.SessionID != "" {
			fmt.Fprintf(output, "Session: %s\n", record.SessionID)
		} else {
			fmt.Fprintln(output, "Session: ephemeral")
		}
		if record.APIKeyName != "" {
			fmt.Fprintf(output, "API Key: %s\n", record.APIKeyName)
		}
		if record.Error != "" {
			fmt.Fprintf(output, "Error: %s\n", record.Error)
		} else {
			fmt.Fprintf(output, "Status: %d (%d redirects, %dms)\n",
				record.StatusCode, record.RedirectCount, record.ElapsedMS)
			if record.FinalURL != "" && record.FinalURL != record.TargetURL {
				fmt.Fprintf(output, "Final URL: %s\n", record.FinalURL)
			}
		}

		// Show limited output for large result sets
		if i >= 9 && len(records) > 10 {
			remaining := len(records) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more records\n", remaining)
			fmt.Fprintf(output, "Use --limit and --offset for pagination.\n")
			break
		}
	}

	return nil
}
