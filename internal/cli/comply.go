package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landsight/parcelfit/pkg/errors"
	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/zoning"
)

// complyCommand creates the comply command, the zoning review.
func (c *CLI) complyCommand() *cobra.Command {
	var opts struct {
		json    bool
		noCache bool
		refresh bool
	}

	cmd := &cobra.Command{
		Use:   "comply <site>",
		Short: "Review a proposed development against district rules",
		Long: `Comply runs the zoning compliance review for a site's proposal: use
permission, density, height, setbacks, lot coverage, floor area ratio,
parking, and landscaping, each against the district's rules or rules
extracted from the site's ordinance text.

The site file needs a [proposal] block; district rules come from the
[district] block or [rules] ordinance text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			site, err := loadSite(args[0])
			if err != nil {
				return fmt.Errorf("comply: %w", err)
			}
			if site.Proposal == nil {
				return errors.New(errors.ErrCodeInvalidSite,
					"comply: site file has no [proposal] block to review")
			}

			rep, err := c.runAnalysis(ctx, args[0], opts.noCache, opts.refresh)
			if err != nil {
				return fmt.Errorf("comply: %w", err)
			}
			z := rep.Zoning
			if z == nil {
				return errors.New(errors.ErrCodeInternal, "comply: analysis produced no zoning section")
			}
			if z.Error != "" {
				return errors.New(errors.ErrCodeInvalidRules, "comply: %s", z.Error)
			}

			if opts.json {
				return printJSON(z)
			}

			printCompliance(rep.Site, z)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the review as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the analysis cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached report exists")

	return cmd
}

// printCompliance renders the full check-by-check review.
func printCompliance(siteName string, z *feasibility.ZoningSection) {
	printNewline()
	printHeader(siteName)

	district := z.District
	if district == "" {
		district = "extracted rules"
	}
	printKeyValue("district", district)
	printKeyValue("score", fmt.Sprintf("%.0f%%", z.Score*100))
	printNewline()

	for _, check := range z.Checks {
		printCheck(check)
	}

	printNewline()
	switch {
	case z.Compliant:
		printSuccess("proposal complies with %s", district)
	default:
		printError("proposal does not comply (%d violations)", len(z.Violations))
	}
	for _, w := range z.Warnings {
		printWarning("%s", w)
	}
	for _, n := range z.Notes {
		printDetail("%s", n)
	}
}

// printCheck renders one compliance check line.
func printCheck(check zoning.CheckResult) {
	icon := styleIconInfo.Render(iconInfo)
	switch check.Status {
	case zoning.StatusCompliant:
		icon = styleIconSuccess.Render(iconSuccess)
	case zoning.StatusNonCompliant:
		icon = styleIconError.Render(iconError)
	case zoning.StatusNotListed:
		icon = styleIconWarning.Render(iconWarning)
	}

	name := fmt.Sprintf("%-18s", check.Name)
	fmt.Println("  " + icon + " " + StyleValue.Render(name) + StyleDim.Render(check.Message))
}
