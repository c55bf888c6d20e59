// Package cli implements the partscout command-line interface.  Every
// command runs in one of two modes: local, where the full scoring
// pipeline executes in-process with no persistence, or remote, where the
// command talks to a running apiserver through pkg/client.  The --server
// flag selects remote mode.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/pkg/client"
	"github.com/partscout/partscout/pkg/types/listing"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Timeout      time.Duration
	ServerAddr   string
}

// CLIContext carries initialized dependencies through the command tree.
// Client is nil unless --server was given.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Client       *client.Client
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand creates the root command with global flags and all
// subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "partscout",
		Short: "Valuation and risk scoring for secondhand automotive part listings",
		Long: "partscout estimates a fair-market-value range for a secondhand automotive\n" +
			"part listing, classifies the ask price against it, and computes a composite\n" +
			"trust score with advisory risk flags.\n\n" +
			"Commands run locally by default; pass --server to score through a running\n" +
			"partscout apiserver instead.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./partscout.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")
	pf.StringVar(&opts.ServerAddr, "server", "", "apiserver address; enables remote mode")

	cmd.AddCommand(
		NewScoreCommand(),
		NewAnalyzeCommand(),
		NewScoresCommand(),
		NewServeCommand(),
	)

	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
	}
	if opts.ServerAddr != "" {
		cliCtx.Client = client.New(opts.ServerAddr, client.WithTimeout(opts.Timeout))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(context.WithValue(parent, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration from an explicit --config path, the
// usual search locations, or falls back to environment plus defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./partscout.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".partscout", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/partscout/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}

	return config.LoadFromEnv()
}

// initLogger builds a console logger on stderr so command output on
// stdout stays clean for piping.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:       opts.LogLevel,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts the CLIContext installed by persistentPreRun.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("command context is not initialized")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("command context is not initialized")
	}
	return cliCtx, nil
}

// Execute runs the CLI and reports the error to stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output rendering
// ─────────────────────────────────────────────────────────────────────────────

// outcomeView is the render model shared by the local and remote paths.
type outcomeView struct {
	Record       *listing.ScoreRecord `json:"record,omitempty"`
	Result       listing.ScoreResult  `json:"result"`
	SellerRating float64              `json:"seller_rating,omitempty"`
}

func printOutcome(cmd *cobra.Command, view outcomeView) error {
	cliCtx, err := GetCLIContext(cmd)
	if err == nil && strings.EqualFold(cliCtx.OutputFormat, "json") {
		return printJSON(cmd, view)
	}
	return printOutcomeText(cmd, view)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printOutcomeText(cmd *cobra.Command, view outcomeView) error {
	out := cmd.OutOrStdout()
	val := view.Result.Valuation
	intel := view.Result.Intelligence

	fmt.Fprintf(out, "Score:        %.1f / 10\n", intel.Score10)
	fmt.Fprintf(out, "FMV range:    $%d - $%d (mid $%d)\n",
		val.MarketRange.Low, val.MarketRange.High, val.MarketRange.Mid)
	fmt.Fprintf(out, "Price signal: %s\n", val.PriceSignal)
	if view.SellerRating > 0 {
		fmt.Fprintf(out, "Seller:       %.1f / 5.0 (estimated)\n", view.SellerRating)
	}
	if len(intel.RiskFlags) == 0 {
		fmt.Fprintln(out, "Risk flags:   none")
	} else {
		fmt.Fprintln(out, "Risk flags:")
		for _, f := range intel.RiskFlags {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	if view.Record != nil && view.Record.ID != "" {
		fmt.Fprintf(out, "Record:       %s\n", view.Record.ID)
	}
	return nil
}

func printRecordText(cmd *cobra.Command, rec *listing.ScoreRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:           %s\n", rec.ID)
	if rec.Title != "" {
		fmt.Fprintf(out, "Title:        %s\n", rec.Title)
	}
	if rec.ListingURL != "" {
		fmt.Fprintf(out, "URL:          %s\n", rec.ListingURL)
	}
	fmt.Fprintf(out, "Score:        %.1f / 10\n", rec.Score10)
	fmt.Fprintf(out, "FMV range:    $%d - $%d (mid $%d)\n", rec.FMVLow, rec.FMVHigh, rec.FMVMid)
	fmt.Fprintf(out, "Price signal: %s\n", rec.PriceSignal)
	fmt.Fprintf(out, "Scored at:    %s\n", rec.CreatedAt.Format(time.RFC3339))
	if len(rec.RiskFlags) > 0 {
		fmt.Fprintln(out, "Risk flags:")
		for _, f := range rec.RiskFlags {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
}

// formatTable renders headers and rows as an aligned ASCII table.
func formatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			sb.WriteString(padRight(val, widths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared flag parsing
// ─────────────────────────────────────────────────────────────────────────────

func parseCategoryFlag(s string) (listing.Category, error) {
	if s == "" {
		return "", nil
	}
	cat, ok := listing.ParseCategory(s)
	if !ok {
		return "", fmt.Errorf("invalid category %q (expected engine, suspension, transmission, brakes, rims, tires, exhaust, chassis, audio)", s)
	}
	return cat, nil
}

func parseConditionFlag(s string) (listing.Condition, error) {
	if s == "" {
		return "", nil
	}
	cond, ok := listing.ParseCondition(s)
	if !ok {
		return "", fmt.Errorf("invalid condition %q (expected new, used, aftermarket)", s)
	}
	return cond, nil
}
