package format

// Target identifies the dimensionality of a texture as reported by a decoder.
type Target uint8

const (
	TargetUnknown Target = iota
	Target1D
	Target1DArray
	Target2D
	Target2DArray
	Target3D
	TargetCube
	TargetCubeArray
)

// String returns the human-readable name of the target.
func (t Target) String() string {
	switch t {
	case Target1D:
		return "1d"
	case Target1DArray:
		return "1d-array"
	case Target2D:
		return "2d"
	case Target2DArray:
		return "2d-array"
	case Target3D:
		return "3d"
	case TargetCube:
		return "cube"
	case TargetCubeArray:
		return "cube-array"
	default:
		return "unknown"
	}
}
