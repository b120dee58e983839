package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/landsight/parcelfit/pkg/rules"
)

// rulesCommand creates the rules command, the ordinance text extractor.
func (c *CLI) rulesCommand() *cobra.Command {
	var opts struct {
		json    bool
		noCache bool
	}

	cmd := &cobra.Command{
		Use:   "rules <ordinance.txt>",
		Short: "Extract zoning rules from ordinance text",
		Long: `Rules runs pattern extraction over a plain-text zoning ordinance and
prints the structured rules it found: setbacks, height limits, lot
coverage, FAR, density, parking, and use lists. The extracted set is
cross-checked for internal consistency.

Extraction is heuristic; the confidence score says how much of the
usual rule surface was found, and warnings flag anything suspicious.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("rules: %w", err)
			}

			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return fmt.Errorf("rules: %w", err)
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			res, cached, err := runner.ParseRulesWithCacheInfo(ctx, string(text))
			if err != nil {
				return fmt.Errorf("rules: %w", err)
			}
			prog.done(fmt.Sprintf("Extracted rules from %s", args[0]))

			cc := rules.ValidateConsistency(res.Rules)

			if opts.json {
				return printJSON(struct {
					rules.ParseResult
					Consistency rules.ConsistencyResult `json:"consistency"`
				}{res, cc})
			}

			printRules(res, cc, cached)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the extracted rules as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the rules cache")

	return cmd
}

// printRules renders the extracted rule set for the terminal.
func printRules(res rules.ParseResult, cc rules.ConsistencyResult, cached bool) {
	printNewline()
	printHeader("Extracted Rules")

	r := res.Rules
	if sb := r.Setbacks; sb.Any() {
		printKeyValue("setbacks", formatSetbackRules(sb))
	}
	if h := r.Height; h.Any() {
		parts := ""
		if h.MaxFeet != nil {
			parts = formatFeet(*h.MaxFeet)
		}
		if h.MaxStories != nil {
			if parts != "" {
				parts += ", "
			}
			parts += fmt.Sprintf("%d stories", *h.MaxStories)
		}
		printKeyValue("height", "max "+parts)
	}
	if cov := r.Coverage; cov.MaxCoveragePercent != nil {
		printKeyValue("coverage", fmt.Sprintf("max %s%%", formatNumber(*cov.MaxCoveragePercent)))
	}
	if cov := r.Coverage; cov.MaxFAR != nil {
		printKeyValue("far", fmt.Sprintf("max %.2f", *cov.MaxFAR))
	}
	if d := r.Density; d.MaxUnitsPerAcre != nil {
		printKeyValue("density", fmt.Sprintf("max %s units/acre", formatNumber(*d.MaxUnitsPerAcre)))
	}
	if d := r.Density; d.MinLotSqFt != nil {
		printKeyValue("min lot", formatSqFt(*d.MinLotSqFt))
	}
	if p := r.Parking; p.SpacesPerUnit != nil {
		printKeyValue("parking", fmt.Sprintf("%s spaces/unit", formatNumber(*p.SpacesPerUnit)))
	}
	if u := r.Uses; u.Any() {
		printUseList("permitted", u.Permitted)
		printUseList("conditional", u.Conditional)
		printUseList("prohibited", u.Prohibited)
	}

	for _, w := range res.Warnings {
		printWarning("%s", w)
	}

	if !cc.Consistent {
		printError("extracted rules contradict each other")
		for _, line := range cc.Inconsistencies {
			printDetail("%s", line)
		}
	}
	for _, w := range cc.Warnings {
		printWarning("%s", w)
	}

	printNewline()
	printStats(cached, fmt.Sprintf("confidence %.0f%%", res.Confidence*100))
}

// formatSetbackRules renders the per-direction setbacks on one line.
func formatSetbackRules(sb rules.SetbackRules) string {
	parts := []string{}
	add := func(name string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s %s", name, formatFeet(*v)))
		}
	}
	add("front", sb.Front)
	add("rear", sb.Rear)
	add("side", sb.Side)
	add("corner side", sb.CornerSide)
	add("general", sb.General)

	line := ""
	for i, p := range parts {
		if i > 0 {
			line += ", "
		}
		line += p
	}
	return line
}

// printUseList renders one use list when it has entries.
func printUseList(label string, uses []string) {
	if len(uses) == 0 {
		return
	}
	line := ""
	for i, u := range uses {
		if i > 0 {
			line += ", "
		}
		line += u
	}
	printKeyValue(label, line)
}
