package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landsight/parcelfit/pkg/feasibility"
)

// yardCommand creates the yard command, the outdoor-space analysis.
func (c *CLI) yardCommand() *cobra.Command {
	var opts struct {
		json    bool
		noCache bool
		refresh bool
	}

	cmd := &cobra.Command{
		Use:   "yard <site>",
		Short: "Analyze the outdoor space left around the buildings",
		Long: `Yard reports what stays open after the site's buildings: total outdoor
area, the parts that qualify as backyards, what each backyard is big
enough for, how private it is, and what planting it could support.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			rep, err := c.runAnalysis(ctx, args[0], opts.noCache, opts.refresh)
			if err != nil {
				return fmt.Errorf("yard: %w", err)
			}

			if opts.json {
				return printJSON(rep.Yard)
			}

			printYard(rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the analysis cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached report exists")

	return cmd
}

// printYard renders the outdoor-space analysis in full.
func printYard(rep *feasibility.Report) {
	y := rep.Yard

	printNewline()
	printHeader(rep.Site)
	printKeyValue("outdoor", fmt.Sprintf("%s (%.0f%% of the parcel, %d parts)",
		formatSqFt(y.OutdoorSqFt), y.OutdoorPct, len(y.Parts)))

	if open := y.OpenSpace; open != nil {
		if open.Compliant {
			printSuccess("open space meets the %s%% minimum", formatNumber(open.RequiredPercent))
		} else {
			printWarning("%s", open.Note)
		}
	}

	if len(y.Backyards) == 0 {
		printInfo("no outdoor part qualifies as a backyard")
		return
	}

	for i, b := range y.Backyards {
		printNewline()
		printHeader(fmt.Sprintf("Backyard %d", i+1))
		printKeyValue("size", fmt.Sprintf("%s (%s x %s)",
			formatSqFt(b.AreaSqFt), formatFeet(b.WidthFt), formatFeet(b.DepthFt)))

		if len(b.Uses) > 0 {
			uses := ""
			for j, u := range b.Uses {
				if j > 0 {
					uses += ", "
				}
				uses += string(u)
			}
			printKeyValue("fits", uses)
		}

		printKeyValue("privacy", fmt.Sprintf("%.1f/10 (%s)", b.PrivacyScore, b.PrivacyLevel))
		printKeyValue("access", fmt.Sprintf("%.1f/10", b.Accessibility))

		for _, p := range b.Plantings {
			printDetail("%-14s $%.0f to $%.0f", string(p.Type), p.CostLow, p.CostHigh)
		}
	}
}
