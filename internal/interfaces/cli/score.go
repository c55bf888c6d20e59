package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/partscout/partscout/internal/application/scoring"
	"github.com/partscout/partscout/internal/domain/brand"
	"github.com/partscout/partscout/internal/domain/intelligence"
	"github.com/partscout/partscout/internal/domain/valuation"
	"github.com/partscout/partscout/internal/infrastructure/signals"
	"github.com/partscout/partscout/pkg/client"
)

// scoreFlags collects the structured listing fields for the score command.
type scoreFlags struct {
	title       string
	category    string
	condition   string
	price       float64
	partYear    int
	engineMiles float64
	url         string
	buyerZip    string
	distance    float64
	tenure      float64
	marketplace bool
}

// NewScoreCommand creates the score command, which rates a listing from
// structured fields without fetching anything.
func NewScoreCommand() *cobra.Command {
	flags := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a listing from structured fields",
		Long: "Estimate the fair-market-value range, price signal, and composite trust\n" +
			"score for a listing described entirely by flags. Nothing is fetched; missing\n" +
			"telemetry falls back to deterministic simulated signals.",
		Example: "  partscout score --title \"Bilstein B8 rear shocks\" --category suspension --condition new --price 360 --marketplace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.title, "title", "", "listing title")
	f.StringVar(&flags.category, "category", "", "part category (engine, suspension, ...)")
	f.StringVar(&flags.condition, "condition", "", "part condition (new, used, aftermarket)")
	f.Float64Var(&flags.price, "price", 0, "ask price in USD")
	f.IntVar(&flags.partYear, "part-year", 0, "manufacture year")
	f.Float64Var(&flags.engineMiles, "engine-miles", 0, "engine mileage (engine listings only)")
	f.StringVar(&flags.url, "url", "", "listing URL, recorded but not fetched")
	f.StringVar(&flags.buyerZip, "buyer-zip", "", "buyer ZIP code")
	f.Float64Var(&flags.distance, "distance", 0, "pickup distance in miles")
	f.Float64Var(&flags.tenure, "tenure", 0, "seller account age in months")
	f.BoolVar(&flags.marketplace, "marketplace", false, "listing comes from a known marketplace")

	return cmd
}

func runScore(cmd *cobra.Command, flags *scoreFlags) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	category, err := parseCategoryFlag(flags.category)
	if err != nil {
		return err
	}
	condition, err := parseConditionFlag(flags.condition)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	changed := cmd.Flags().Changed

	if cliCtx.Client != nil {
		req := client.ScoreRequest{
			Category:          string(category),
			Condition:         string(condition),
			ListingURL:        flags.url,
			BuyerZip:          flags.buyerZip,
			MarketplaceSource: flags.marketplace,
		}
		if changed("title") {
			req.Title = &flags.title
		}
		if changed("price") {
			req.Price = &flags.price
		}
		if changed("part-year") {
			req.PartYear = &flags.partYear
		}
		if changed("engine-miles") {
			req.EngineMiles = &flags.engineMiles
		}
		if changed("distance") {
			req.DistanceMiles = &flags.distance
		}
		if changed("tenure") {
			req.SellerTenureMonths = &flags.tenure
		}

		out, err := cliCtx.Client.ScoreListing(ctx, req)
		if err != nil {
			return err
		}
		return printOutcome(cmd, outcomeView{
			Record:       out.Record,
			Result:       out.Result,
			SellerRating: out.SellerRating,
		})
	}

	req := scoring.Request{
		Category:            category,
		Condition:           condition,
		ListingURL:          flags.url,
		BuyerZip:            flags.buyerZip,
		IsMarketplaceSource: flags.marketplace,
	}
	if changed("title") {
		req.Title = &flags.title
	}
	if changed("price") {
		req.Price = &flags.price
	}
	if changed("part-year") {
		req.PartYear = &flags.partYear
	}
	if changed("engine-miles") {
		req.EngineMiles = &flags.engineMiles
	}
	if changed("distance") {
		req.DistanceMiles = &flags.distance
	}
	if changed("tenure") {
		req.SellerTenureMonths = &flags.tenure
	}

	out, err := localService(cliCtx).Score(ctx, req)
	if err != nil {
		return err
	}
	return printOutcome(cmd, outcomeView{
		Record:       out.Record,
		Result:       out.Result,
		SellerRating: out.SellerRating,
	})
}

// localService assembles an in-process scoring pipeline with no
// persistence or event publishing.
func localService(cliCtx *CLIContext, opts ...scoring.ServiceOption) *scoring.Service {
	return scoring.NewService(
		brand.NewResolver(),
		valuation.NewCalculator(),
		intelligence.NewScorer(),
		signals.NewSimulator(),
		cliCtx.Logger,
		opts...,
	)
}
