package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several front-ends
// can share one backend without seeing each other's entries:
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SheetKey implements Keyer.
func (k *ScopedKeyer) SheetKey(sourceHash string, opts SheetKeyOpts) string {
	return k.prefix + k.inner.SheetKey(sourceHash, opts)
}
