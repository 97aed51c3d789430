package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
// Example usage:
//
//	// Entries written by another release are never read back
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tavola:"+buildinfo.Version+":")
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

// PlanKey generates a prefixed key for plan caching.
func (k *ScopedKeyer) PlanKey(inputHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(inputHash, opts)
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string {
	return k.prefix
}
