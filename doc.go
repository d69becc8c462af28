// Package asset resolves asset names into read-only views over texture and
// buffer data.
//
// Three backends can serve a name:
//   - Loose DDS files, validated by hand and memory mapped on first access
//     ([MappedView]). Data is returned without copying.
//   - Packages discovered in registered search paths ([PackagedView]).
//     Assets are addressed at blob granularity; the smallest mip levels of
//     each layer share one mip tail blob.
//   - A fallback [Decoder] that loads the file into memory ([FallbackView]).
//
// # Quick Start
//
//	r := asset.NewResolver(asset.WithLogger(logger))
//	defer r.Close()
//	if err := r.AddSearchPath(10, "./mods"); err != nil {
//	    return err
//	}
//	if err := r.AddSearchPath(0, "./assets"); err != nil {
//	    return err
//	}
//	v, err := r.Resolve("./assets/textures/stone.dds")
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//	level0, err := v.Data(0, 0)
//
// # Search paths
//
// Search paths are normalized (absolute, lowercased, one trailing separator)
// and may be registered under only one priority. Higher priorities are
// searched first and, within a priority, the newest registration wins.
// Packages inside a search path are tried in reverse lexicographic order of
// their file names.
//
// # Packages
//
// Package files are built with [pack.Create] and read with [pack.Open]. The
// [Package] interface is all a [PackagedView] needs, so other containers can
// be mounted through [WithPackageOpener].
//
// # Concurrency
//
// Resolver and the views are not safe for concurrent use. *pack.Package is
// safe for concurrent reads.
package asset
