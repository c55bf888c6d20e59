package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/partscout/partscout/internal/application/scoring"
	"github.com/partscout/partscout/internal/infrastructure/geo"
	"github.com/partscout/partscout/internal/infrastructure/metadata"
	"github.com/partscout/partscout/pkg/client"
)

type analyzeFlags struct {
	url         string
	category    string
	condition   string
	partYear    int
	engineMiles float64
	buyerZip    string
	price       float64
}

// NewAnalyzeCommand creates the analyze command, which fetches a listing
// URL live and scores whatever it finds.
func NewAnalyzeCommand() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fetch a listing URL and score it",
		Long: "Fetch the listing page, extract the title, price, and location, then score\n" +
			"the result. A fetch that fails or yields nothing degrades to reduced-confidence\n" +
			"scoring instead of erroring.",
		Example: "  partscout analyze --url https://www.ebay.com/itm/123 --category engine --buyer-zip 78701",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.url, "url", "", "listing URL to fetch [REQUIRED]")
	f.StringVar(&flags.category, "category", "", "part category (engine, suspension, ...)")
	f.StringVar(&flags.condition, "condition", "", "part condition (new, used, aftermarket)")
	f.IntVar(&flags.partYear, "part-year", 0, "manufacture year")
	f.Float64Var(&flags.engineMiles, "engine-miles", 0, "engine mileage (engine listings only)")
	f.StringVar(&flags.buyerZip, "buyer-zip", "", "buyer ZIP code for distance estimation")
	f.Float64Var(&flags.price, "price", 0, "override the detected ask price")
	cmd.MarkFlagRequired("url")

	return cmd
}

func runAnalyze(cmd *cobra.Command, flags *analyzeFlags) error {
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
		req := client.AnalyzeRequest{
			URL:       flags.url,
			Category:  string(category),
			Condition: string(condition),
			BuyerZip:  flags.buyerZip,
		}
		if changed("part-year") {
			req.PartYear = &flags.partYear
		}
		if changed("engine-miles") {
			req.EngineMiles = &flags.engineMiles
		}
		if changed("price") {
			req.Price = &flags.price
		}

		out, err := cliCtx.Client.AnalyzeListing(ctx, req)
		if err != nil {
			return err
		}
		return printOutcome(cmd, outcomeView{
			Record:       out.Record,
			Result:       out.Result,
			SellerRating: out.SellerRating,
		})
	}

	req := scoring.AnalyzeRequest{
		URL:       flags.url,
		Category:  category,
		Condition: condition,
		BuyerZip:  flags.buyerZip,
	}
	if changed("part-year") {
		req.PartYear = &flags.partYear
	}
	if changed("engine-miles") {
		req.EngineMiles = &flags.engineMiles
	}
	if changed("price") {
		req.Price = &flags.price
	}

	svc := localService(cliCtx,
		scoring.WithFetcher(metadata.NewFetcher(cliCtx.Config.Fetcher, cliCtx.Logger)),
		scoring.WithGeo(geo.NewGeocoder(cliCtx.Config.Geo, cliCtx.Logger), geo.HaversineMiles),
	)

	out, err := svc.Analyze(ctx, req)
	if err != nil {
		return err
	}
	return printOutcome(cmd, outcomeView{
		Record:       out.Record,
		Result:       out.Result,
		SellerRating: out.SellerRating,
	})
}
