package phtrees

import lru "github.com/hashicorp/golang-lru"

// VolumeCache keeps serialized volumes so that repeated queries over the
// same forest skip the resolver. Values are *VolumeDict and must not be
// modified by callers.
type VolumeCache interface {
	// Add stores a freshly-serialized volume.
	Add(key, value interface{})
	// Contains indicates the volume with the given key was serialized already.
	Contains(key interface{}) bool
	// Get retrieves a serialized volume, if cached.
	Get(key interface{}) (value interface{}, ok bool)
}

// NewVolumeCache creates a new ARC-based volume cache holding size entries.
func NewVolumeCache(size int) VolumeCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
