package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful when one store serves several jurisdictions or tenants whose
// cached analyses must not mix.
//
// Example usage:
//
//	// County-specific keys
//	countyKeyer := NewScopedKeyer(NewDefaultKeyer(), "county:placer:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RulesKey generates a prefixed key for parsed rule sets.
func (k *ScopedKeyer) RulesKey(text string) string {
	return k.prefix + k.inner.RulesKey(text)
}

// SiteKey generates a prefixed key for site geometry results.
func (k *ScopedKeyer) SiteKey(siteHash string) string {
	return k.prefix + k.inner.SiteKey(siteHash)
}

// ReportKey generates a prefixed key for feasibility reports.
func (k *ScopedKeyer) ReportKey(siteHash, optsHash string) string {
	return k.prefix + k.inner.ReportKey(siteHash, optsHash)
}
