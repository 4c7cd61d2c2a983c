package cache

// SchemaVersion is bumped whenever the cached manifest encoding changes, so
// old entries are never decoded by a newer binary.
const SchemaVersion = 1

// Keyer builds cache keys.
type Keyer interface {
	// ManifestKey identifies the decoded form of one manifest file.
	ManifestKey(path string, contentHash string) string
	// TreeKey identifies a resolved load order for a selection of mods
	// over a given set of manifests.
	TreeKey(manifestsHash string, selected []string) string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ManifestKey(path, contentHash string) string {
	return hashKey("manifest", SchemaVersion, path, contentHash)
}

func (DefaultKeyer) TreeKey(manifestsHash string, selected []string) string {
	return hashKey("order", SchemaVersion, manifestsHash, selected)
}

// ScopedKeyer wraps a Keyer with a prefix so several installations can
// share one backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "modkit:host-a:")
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

func (k *ScopedKeyer) ManifestKey(path, contentHash string) string {
	return k.prefix + k.inner.ManifestKey(path, contentHash)
}

func (k *ScopedKeyer) TreeKey(manifestsHash string, selected []string) string {
	return k.prefix + k.inner.TreeKey(manifestsHash, selected)
}
