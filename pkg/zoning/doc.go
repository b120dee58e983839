// Package zoning evaluates a development proposal against structured
// district rules.
//
// The evaluator is pure. It consumes rules that are already structured,
// either parsed from ordinance text by pkg/rules or loaded from a
// district record, and never reads raw text or geometry itself. Parcel
// context arrives as plain numbers so the caller decides how areas are
// measured.
//
// # Checks
//
// Evaluate runs eight independent checks in a fixed order: use,
// density, height, setbacks, lot coverage, floor area ratio, parking,
// and landscaping. Every check appears in the result exactly once.
// A check whose rule category the district never mentions reports
// StatusNotApplicable. A check whose rule exists but whose proposal
// side is unstated reports StatusNotListed, which routes the check
// into Warnings for manual review instead of guessing a verdict.
// All numeric comparisons are boundary inclusive: a proposal sitting
// exactly on a district maximum or minimum is compliant.
//
// # Scoring
//
// Score is the share of compliant checks among applicable ones, where
// applicable means the check produced a definite verdict. Checks that
// are not applicable or flagged for review never count against a
// proposal. OverallCompliant holds only when Score is exactly 1.
// Special district requirements such as overlay zones are advisory
// Notes, never violations.
package zoning
