//go:generate flatc --go --go-namespace fb -o internal schema/pack.fbs

// Package pack reads and writes asset packages.
//
// A package is a single file holding many assets. Each asset's bytes are
// split into blobs that can be read individually:
//   - Images store one blob per mip level per layer, except the smallest
//     levels, which share one "tail" blob per layer
//   - Buffers store a single blob
//
// Blobs may be zstd compressed. The directory at the end of the file is
// FlatBuffers encoded and lists assets sorted by path, enabling O(log n)
// lookups, and every blob with its offset, size, and digest.
package pack
