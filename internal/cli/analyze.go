package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/render/siteplan"
)

// analyzeCommand creates the analyze command, the full feasibility run.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts struct {
		json    bool
		svgPath string
		noCache bool
		refresh bool
	}

	cmd := &cobra.Command{
		Use:   "analyze <site>",
		Short: "Run the full feasibility analysis for a site",
		Long: `Analyze runs every stage for one site: parcel adaptation, ordinance
rule extraction, setback erosion, obstacle constraint zones, yard and
open space checks, building placement, and zoning review. Stages
without inputs in the site file are skipped.

The site argument is a TOML site file, or a bare GeoJSON parcel for a
geometry-only run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			rep, err := c.runAnalysis(ctx, args[0], opts.noCache, opts.refresh)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			if opts.json {
				if err := printJSON(rep); err != nil {
					return fmt.Errorf("analyze: encode report: %w", err)
				}
			} else {
				printReport(rep)
			}

			if opts.svgPath != "" {
				svg := siteplan.RenderSVG(rep,
					siteplan.WithPlacements(),
					siteplan.WithZones(),
					siteplan.WithYards(),
					siteplan.WithTitle(rep.Site))
				if err := os.WriteFile(opts.svgPath, svg, 0o644); err != nil {
					return fmt.Errorf("analyze: write svg: %w", err)
				}
				printSuccess("Wrote site plan")
				printFile(opts.svgPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the full report as JSON")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "write a site plan SVG to this path")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the analysis cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached report exists")

	return cmd
}

// runAnalysis loads the site at path and runs the full analysis with a
// progress spinner.
func (c *CLI) runAnalysis(ctx context.Context, path string, noCache, refresh bool) (*feasibility.Report, error) {
	site, err := loadSite(path)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Analyzing %s...", site.Name)
	spinner.Start()
	rep, err := runner.AnalyzeSite(ctx, site, feasibility.AnalyzeOptions{Refresh: refresh})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Analysis failed")
		}
		return nil, err
	}
	spinner.Stop()
	return rep, nil
}

// printReport renders the report sections for the terminal.
func printReport(rep *feasibility.Report) {
	printNewline()
	printHeader(rep.Site)

	p := rep.Parcel
	printKeyValue("parcel", fmt.Sprintf("%s (%s x %s)",
		formatSqFt(p.AreaSqFt), formatFeet(p.WidthFt), formatFeet(p.DepthFt)))

	if r := rep.Rules; r != nil {
		printKeyValue("rules", fmt.Sprintf("extracted at %.0f%% confidence", r.Confidence*100))
		if !r.Consistent {
			printWarning("extracted rules are inconsistent")
			for _, line := range r.Inconsistencies {
				printDetail("%s", line)
			}
		}
	}

	b := rep.Buildable
	if b.Empty {
		printKeyValue("buildable", "nothing: setbacks consume the parcel")
	} else {
		printKeyValue("buildable", fmt.Sprintf("%s (%.0f%%) after the %s setback",
			formatSqFt(b.AreaSqFt), b.ParcelPct, formatFeet(b.SetbackFt)))
		if b.Parts > 1 {
			printDetail("split into %d parts, largest %s", b.Parts, formatSqFt(b.LargestSqFt))
		}
	}

	o := rep.Obstacles
	if o.Total > 0 {
		printKeyValue("obstacles", fmt.Sprintf("%d (%d high, %d medium, %d low)",
			o.Total, o.High, o.Medium, o.Low))
		if o.Removable > 0 {
			printDetail("%d removable, mitigation $%.0f", o.Removable, o.MitigationCost)
		}
		printKeyValue("developable", fmt.Sprintf("%s (%.0f%%) outside constraint zones",
			formatSqFt(o.DevelopableSqFt), o.DevelopablePct))
	}
	printKeyValue("feasibility", fmt.Sprintf("%.1f/10 (%s)", o.Score, o.Label))

	y := rep.Yard
	printKeyValue("yard", fmt.Sprintf("%s outdoor (%.0f%%), %d backyards",
		formatSqFt(y.OutdoorSqFt), y.OutdoorPct, len(y.Backyards)))
	if open := y.OpenSpace; open != nil && !open.Compliant {
		printWarning("%s", open.Note)
	}

	if pl := rep.Placement; pl != nil {
		printPlacementSummary(pl)
	}
	if z := rep.Zoning; z != nil {
		printZoningSummary(z)
	}

	printNewline()
	printStats(rep.CacheInfo.ReportHit,
		rep.GeneratedAt.Format("2006-01-02 15:04"),
		rep.Stats.TotalTime.Round(time.Millisecond).String())
}

// printPlacementSummary renders the placement verdict inside a report.
func printPlacementSummary(pl *feasibility.PlacementSection) {
	switch {
	case pl.Error != "":
		printWarning("placement failed: %s", pl.Error)
	case pl.Fits:
		printSuccess("a %s x %s building fits (%d positions)",
			formatFeet(pl.WidthFt), formatFeet(pl.DepthFt), pl.Candidates)
		if rec := pl.Recommended; rec != nil {
			printDetail("best position (%.0f, %.0f), score %.2f",
				rec.Position[0], rec.Position[1], rec.Score)
		}
	default:
		printError("a %s x %s building does not fit",
			formatFeet(pl.WidthFt), formatFeet(pl.DepthFt))
		for _, line := range pl.Advice {
			printDetail("%s", line)
		}
	}
}

// printZoningSummary renders the zoning verdict inside a report.
func printZoningSummary(z *feasibility.ZoningSection) {
	name := z.District
	if name == "" {
		name = "extracted rules"
	}
	switch {
	case z.Error != "":
		printWarning("zoning review failed: %s", z.Error)
	case z.Compliant:
		printSuccess("proposal complies with %s", name)
	default:
		printError("proposal violates %s (score %.0f%%)", name, z.Score*100)
		for _, v := range z.Violations {
			printDetail("%s", v)
		}
	}
}
