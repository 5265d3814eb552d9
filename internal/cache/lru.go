// Package cache keeps loaded schema registries so that embedders and
// the CLI can re-present the same schema document cheaply.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/strictjson/pkg/schema"
	"github.com/usestring/strictjson/pkg/schemafile"
	"github.com/usestring/strictjson/pkg/types"
)

// Loader is a thread-safe LRU over schemafile.Load, keyed by document
// digest. Concurrent loads of the same document are collapsed into one
// resolution via singleflight; registries are immutable so sharing the
// cached instance across goroutines is safe.
type Loader struct {
	cache *lru.Cache[string, *schema.Registry]
	group singleflight.Group
}

// NewLoader creates a loader retaining at most maxEntries registries.
func NewLoader(maxEntries int) (*Loader, error) {
	c, err := lru.New[string, *schema.Registry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: c}, nil
}

// Load returns the registry for doc, resolving it on first sight.
// Failed loads are not cached: a SchemaError is startup-fatal for the
// caller and the fixed document will arrive under a new digest anyway.
func (l *Loader) Load(doc []byte) (*schema.Registry, *types.Error) {
	sum := sha256.Sum256(doc)
	key := hex.EncodeToString(sum[:])

	if reg, ok := l.cache.Get(key); ok {
		return reg, nil
	}
	v, err, _ := l.group.Do(key, func() (any, error) {
		// Re-check inside the flight: a previous flight may have
		// populated the cache after our miss.
		if reg, ok := l.cache.Get(key); ok {
			return reg, nil
		}
		reg, lerr := schemafile.Load(doc)
		if lerr != nil {
			return nil, lerr
		}
		l.cache.Add(key, reg)
		return reg, nil
	})
	if err != nil {
		return nil, err.(*types.Error)
	}
	return v.(*schema.Registry), nil
}

// Len returns the number of cached registries.
func (l *Loader) Len() int {
	return l.cache.Len()
}
