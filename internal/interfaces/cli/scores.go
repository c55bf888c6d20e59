package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewScoresCommand creates the scores command group for browsing the
// persisted score history. History lives behind the apiserver, so both
// subcommands require --server.
func NewScoresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Browse persisted scoring outcomes",
		Long:  "Retrieve previously scored listings from a running apiserver.\nRequires the --server flag.",
	}

	cmd.AddCommand(newScoresGetCommand())
	cmd.AddCommand(newScoresListCommand())

	return cmd
}

func newScoresGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <score-id>",
		Short: "Show one persisted score by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := requireRemote(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			rec, err := cliCtx.Client.GetScore(ctx, args[0])
			if err != nil {
				return err
			}

			if strings.EqualFold(cliCtx.OutputFormat, "json") {
				return printJSON(cmd, rec)
			}
			printRecordText(cmd, rec)
			return nil
		},
	}
}

func newScoresListCommand() *cobra.Command {
	var (
		limit      int
		listingURL string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent persisted scores, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := requireRemote(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			if listingURL != "" {
				rec, err := cliCtx.Client.LatestScoreForURL(ctx, listingURL)
				if err != nil {
					return err
				}
				if strings.EqualFold(cliCtx.OutputFormat, "json") {
					return printJSON(cmd, rec)
				}
				printRecordText(cmd, rec)
				return nil
			}

			recs, err := cliCtx.Client.ListScores(ctx, limit)
			if err != nil {
				return err
			}

			if strings.EqualFold(cliCtx.OutputFormat, "json") {
				return printJSON(cmd, recs)
			}

			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scores recorded.")
				return nil
			}

			rows := make([][]string, 0, len(recs))
			for _, rec := range recs {
				rows = append(rows, []string{
					string(rec.ID),
					truncate(rec.Title, 40),
					fmt.Sprintf("%.1f", rec.Score10),
					string(rec.PriceSignal),
					fmt.Sprintf("$%d", rec.FMVMid),
					rec.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTable(
				[]string{"ID", "TITLE", "SCORE", "SIGNAL", "FMV MID", "SCORED AT"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of scores to return (1-200)")
	cmd.Flags().StringVar(&listingURL, "url", "", "show only the latest score for this listing URL")

	return cmd
}

func requireRemote(cmd *cobra.Command) (*CLIContext, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	if cliCtx.Client == nil {
		return nil, fmt.Errorf("score history requires a running apiserver; pass --server")
	}
	return cliCtx, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
