package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/landsight/parcelfit/pkg/errors"
	"github.com/landsight/parcelfit/pkg/feasibility"
	"github.com/landsight/parcelfit/pkg/placement"
	"github.com/landsight/parcelfit/pkg/render/siteplan"
)

// fitCommand creates the fit command, the placement search.
func (c *CLI) fitCommand() *cobra.Command {
	var opts struct {
		building string
		with     string
		optimize float64
		goals    []string
		step     float64
		max      int
		spacing  float64
		pick     bool
		json     bool
		svgPath  string
		noCache  bool
	}

	cmd := &cobra.Command{
		Use:   "fit <site>",
		Short: "Test-fit a building on a site",
		Long: `Fit searches the site's developable area for every position where a
building footprint fits, scores the positions against the requested
goals, and recommends the best one.

The building comes from the site file's [building] block or the
--building flag. A building spec is "WxD" dimensions in feet (40x30),
a target area in square feet (1200), or a named type: ` + strings.Join(placement.Types(), ", ") + `.

--with adds a second building and switches to the pairwise layout
search. --optimize ignores the spec and instead sizes a footprint to
hit a target area.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			site, err := loadSite(args[0])
			if err != nil {
				return fmt.Errorf("fit: %w", err)
			}

			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return fmt.Errorf("fit: %w", err)
			}
			defer runner.Close()

			popts := placement.Options{
				StepFt:        opts.step,
				MaxCandidates: opts.max,
				MinSpacingFt:  opts.spacing,
				Goals:         parseGoals(opts.goals),
			}

			switch {
			case opts.optimize > 0:
				return c.runOptimize(ctx, runner, site, opts.optimize, opts.json)
			case opts.with != "":
				return c.runPair(ctx, runner, site, opts.building, opts.with, popts, opts.json)
			default:
				return c.runFit(ctx, runner, site, opts.building, popts, opts.json, opts.svgPath, opts.pick)
			}
		},
	}

	cmd.Flags().StringVar(&opts.building, "building", "", "building spec, overriding the site file")
	cmd.Flags().StringVar(&opts.with, "with", "", "second building spec for a pairwise layout")
	cmd.Flags().Float64Var(&opts.optimize, "optimize", 0, "size a footprint for this target area (sq ft)")
	cmd.Flags().StringSliceVar(&opts.goals, "goal", nil, "placement goals to score (default: all)")
	cmd.Flags().Float64Var(&opts.step, "step", 0, "grid step in feet (default 10)")
	cmd.Flags().IntVar(&opts.max, "max", 0, "cap on kept placements (default 10000)")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 0, "minimum building separation in feet (default 10)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick a placement interactively")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "write a placement sketch SVG to this path")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the analysis cache")

	return cmd
}

// runFit performs the single-building search and presents the result.
func (c *CLI) runFit(ctx context.Context, runner *feasibility.Runner, site *feasibility.Site,
	building string, popts placement.Options, asJSON bool, svgPath string, pick bool) error {
	spec, err := resolveSpec(site, building)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Searching placements on %s...", site.Name)
	spinner.Start()
	res, err := runner.TestFit(ctx, site, spec, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Search failed")
		}
		return fmt.Errorf("fit: %w", err)
	}
	spinner.Stop()

	if asJSON {
		return printJSON(res)
	}

	printNewline()
	printHeader(site.Name)
	printKeyValue("building", fmt.Sprintf("%s x %s", formatFeet(res.Width), formatFeet(res.Depth)))
	printKeyValue("developable", formatSqFt(res.DevelopableArea))

	if !res.Fits {
		printError("no valid placement found")
		for _, line := range res.Advice {
			printDetail("%s", line)
		}
		return nil
	}

	printSuccess("%d valid placements", len(res.Candidates))
	if res.Truncated {
		printWarning("search stopped at the placement cap; tighten --step or raise --max")
	}

	chosen := res.Recommended
	if pick {
		picked, err := pickPlacement(res.Candidates, res.Recommended)
		if err != nil {
			return fmt.Errorf("fit: %w", err)
		}
		if picked == nil {
			printDetail("no selection made")
			return nil
		}
		chosen = picked
	}
	printPlacement(chosen)

	if svgPath != "" {
		if err := writeFitSVG(ctx, runner, site, res, chosen, svgPath); err != nil {
			return fmt.Errorf("fit: %w", err)
		}
	}
	return nil
}

// writeFitSVG sketches the search result: every candidate faint, the
// chosen placement solid.
func writeFitSVG(ctx context.Context, runner *feasibility.Runner, site *feasibility.Site,
	res placement.FitResult, chosen *placement.Candidate, path string) error {
	rep, err := runner.AnalyzeSite(ctx, site, feasibility.AnalyzeOptions{})
	if err != nil {
		return err
	}
	cands := res.Candidates
	if chosen != nil {
		cands = append(cands[:len(cands):len(cands)], *chosen)
	}
	svg := siteplan.RenderSVG(rep,
		siteplan.WithCandidates(cands),
		siteplan.WithZones(),
		siteplan.WithTitle(site.Name))
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	printSuccess("Wrote placement sketch")
	printFile(path)
	return nil
}

// runPair performs the two-building layout search.
func (c *CLI) runPair(ctx context.Context, runner *feasibility.Runner, site *feasibility.Site,
	building, with string, popts placement.Options, asJSON bool) error {
	first, err := resolveSpec(site, building)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	second, err := parseSpecArg(with)
	if err != nil {
		return fmt.Errorf("fit: --with: %w", err)
	}

	spinner := newSpinnerWithContext(ctx, "Searching pair layouts on %s...", site.Name)
	spinner.Start()
	res, err := runner.TestPair(ctx, site, []placement.Spec{first, second}, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Search failed")
		}
		return fmt.Errorf("fit: %w", err)
	}
	spinner.Stop()

	if asJSON {
		return printJSON(res)
	}

	printNewline()
	printHeader(site.Name)
	if !res.Fits {
		printError("the pair does not fit")
		for _, line := range res.Advice {
			printDetail("%s", line)
		}
		return nil
	}

	printSuccess("both buildings fit, %s apart (score %.2f)", formatFeet(res.Spacing), res.Score)
	for i := range res.Placements {
		printPlacement(&res.Placements[i])
	}
	return nil
}

// runOptimize sizes a footprint to a target area.
func (c *CLI) runOptimize(ctx context.Context, runner *feasibility.Runner, site *feasibility.Site,
	target float64, asJSON bool) error {
	spinner := newSpinnerWithContext(ctx, "Sizing a %s footprint on %s...", formatSqFt(target), site.Name)
	spinner.Start()
	res, err := runner.OptimizeSize(ctx, site, target)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Sizing failed")
		}
		return fmt.Errorf("fit: %w", err)
	}
	spinner.Stop()

	if asJSON {
		return printJSON(res)
	}

	printNewline()
	printHeader(site.Name)
	if !res.Fits {
		printError("no footprint close to %s fits", formatSqFt(target))
		for _, line := range res.Advice {
			printDetail("%s", line)
		}
		return nil
	}

	printSuccess("best footprint %s x %s (%s, ratio %.2f)",
		formatFeet(res.Width), formatFeet(res.Depth), formatSqFt(res.Area), res.Ratio)
	printKeyValue("setback", formatFeet(res.Setback))
	printKeyValue("core", formatSqFt(res.CoreArea))
	printKeyValue("score", fmt.Sprintf("%.2f", res.Score))
	return nil
}

// printPlacement renders one placement with its score breakdown.
func printPlacement(cand *placement.Candidate) {
	printKeyValue("position", fmt.Sprintf("(%.0f, %.0f)", cand.Position[0], cand.Position[1]))
	printKeyValue("score", fmt.Sprintf("%.2f", cand.Score))
	if cand.Clearance >= 0 {
		printKeyValue("clearance", formatFeet(cand.Clearance))
	}
	for _, gs := range cand.Scores {
		printDetail("%-26s %.2f", string(gs.Goal), gs.Score)
	}
}

// pickPlacement runs the interactive placement picker and returns the
// selected candidate, or nil when the user quit without choosing.
func pickPlacement(cands []placement.Candidate, recommended *placement.Candidate) (*placement.Candidate, error) {
	m := NewPlacementListModel(cands, recommended)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := finalModel.(PlacementListModel)
	if !ok || fm.Selected == nil {
		return nil, nil
	}
	return fm.Selected, nil
}

// resolveSpec picks the building spec: the flag wins, the site file's
// [building] block otherwise.
func resolveSpec(site *feasibility.Site, flag string) (placement.Spec, error) {
	if flag != "" {
		return parseSpecArg(flag)
	}
	if site.Building != nil {
		return *site.Building, nil
	}
	return placement.Spec{}, errors.New(errors.ErrCodeUnsupportedSpec,
		"no building given; add a [building] block to the site file or pass --building")
}

// parseSpecArg parses a compact building spec: "WxD" feet, a bare
// target area in square feet, or a named building type.
func parseSpecArg(s string) (placement.Spec, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return placement.Spec{}, errors.New(errors.ErrCodeUnsupportedSpec, "empty building spec")
	}

	if w, d, ok := strings.Cut(s, "x"); ok {
		width, werr := strconv.ParseFloat(w, 64)
		depth, derr := strconv.ParseFloat(d, 64)
		if werr != nil || derr != nil || width <= 0 || depth <= 0 {
			return placement.Spec{}, errors.New(errors.ErrCodeUnsupportedSpec,
				"bad dimensions %q (want WxD in feet, like 40x30)", s)
		}
		return placement.Spec{Width: width, Depth: depth}, nil
	}

	if area, err := strconv.ParseFloat(s, 64); err == nil {
		if area <= 0 {
			return placement.Spec{}, errors.New(errors.ErrCodeUnsupportedSpec, "target area must be positive")
		}
		return placement.Spec{TargetArea: area}, nil
	}

	return placement.Spec{Type: s}, nil
}

// parseGoals converts flag values into placement goals. Unknown names
// pass through so the search reports them with its own error.
func parseGoals(names []string) []placement.Goal {
	goals := make([]placement.Goal, 0, len(names))
	for _, n := range names {
		goals = append(goals, placement.Goal(strings.TrimSpace(n)))
	}
	return goals
}
