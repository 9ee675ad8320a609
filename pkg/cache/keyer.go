package cache

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Diagram    string  `json:"diagram"`
	Combine    bool    `json:"combine"`
	Strict     bool    `json:"strict"`
	Palette    string  `json:"palette"` // hash of the color table
	Font       string  `json:"font"`
	Background string  `json:"background"`
	TitleColor string  `json:"title_color"`
	Scale      float64 `json:"scale,omitempty"` // PNG only
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of one rendered file. inputHash is the
	// hash of the harness description it was rendered from.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes all key components.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix.
//
// Example usage:
//
//	// Separate artifacts of different releases
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
