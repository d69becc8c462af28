package asset

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// pathHash hashes the physical path of an asset source.
func pathHash(path string) uint64 {
	return xxhash.Sum64String(path)
}

// packagedHash hashes a package path and an asset index within it.
func packagedHash(path string, idx uint32) uint64 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], idx)
	return pathHash(path) ^ xxhash.Sum64(b[:])
}
