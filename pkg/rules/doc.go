// Package rules extracts structured zoning parameters from unstructured
// ordinance text.
//
// [Parse] runs pattern matching over normalized text (abbreviations expanded,
// case folded) and fills a [RuleSet] with whatever it can find: setback
// distances per direction, height limits in feet and stories, lot coverage,
// floor area ratio, density, parking ratios, and permitted/conditional/
// prohibited use lists. Extraction is heuristic by nature, so every result
// carries a confidence score and a warning list instead of failing outright.
//
// The heuristics stay inside this package: downstream compliance evaluation
// consumes only the structured [RuleSet], never raw text.
//
// [ValidateConsistency] cross-checks a rule set for internal contradictions,
// such as a height limit that cannot accommodate the stated story count.
package rules
