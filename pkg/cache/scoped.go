package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one redis database without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "genposter:v1:")
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

// PosterKey generates a prefixed poster key.
func (k *ScopedKeyer) PosterKey(paramsHash string, opts PosterKeyOpts) string {
	return k.prefix + k.inner.PosterKey(paramsHash, opts)
}
