package cache

// Keyer generates cache keys for the analysis stages. Implementations
// must be deterministic: identical inputs yield identical keys.
type Keyer interface {
	// RulesKey keys a parsed rule set by its ordinance text.
	RulesKey(text string) string

	// SiteKey keys site-level geometry results by the site's canonical
	// hash.
	SiteKey(siteHash string) string

	// ReportKey keys a full feasibility report by the site hash and the
	// hash of the analysis options.
	ReportKey(siteHash, optsHash string) string
}

// DefaultKeyer generates hash-based keys with per-stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RulesKey generates a key for parsed rule sets.
func (k *DefaultKeyer) RulesKey(text string) string {
	return hashKey("rules", text)
}

// SiteKey generates a key for site geometry results.
func (k *DefaultKeyer) SiteKey(siteHash string) string {
	return hashKey("site", siteHash)
}

// ReportKey generates a key for feasibility reports.
func (k *DefaultKeyer) ReportKey(siteHash, optsHash string) string {
	return hashKey("report", siteHash, optsHash)
}
