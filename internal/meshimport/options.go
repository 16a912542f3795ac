package meshimport

// Flags is the bit-packed form of Options used by config files and tooling.
// The values are part of the on-disk contract and must not change.
type Flags uint8

const (
	FlagFlipWinding Flags = 0b00010000
	FlagFlipNormals Flags = 0b00100000
	FlagUnitRescale Flags = 0b01000000
	FlagCentre      Flags = 0b10000000
)

// Options selects import and post-process steps. Triangulation always runs.
type Options struct {
	// Import stage, applied by the backend.
	MergeVertices        bool
	SmoothNormals        bool
	ImproveCacheLocality bool
	FlipWinding          bool

	// Second pass over the flat buffers, backend independent.
	Centre      bool
	UnitRescale bool
	FlipNormals bool
}

// DefaultOptions enables the steps every model goes through regardless of flags.
func DefaultOptions() Options {
	return Options{
		MergeVertices:        true,
		SmoothNormals:        true,
		ImproveCacheLocality: true,
	}
}

// OptionsFromFlags returns DefaultOptions with the flagged steps switched on.
func OptionsFromFlags(f Flags) Options {
	o := DefaultOptions()
	o.FlipWinding = f&FlagFlipWinding != 0
	o.FlipNormals = f&FlagFlipNormals != 0
	o.UnitRescale = f&FlagUnitRescale != 0
	o.Centre = f&FlagCentre != 0
	return o
}

// Flags packs the flag-backed options. The always-on import steps have no bit.
func (o Options) Flags() Flags {
	var f Flags
	if o.FlipWinding {
		f |= FlagFlipWinding
	}
	if o.FlipNormals {
		f |= FlagFlipNormals
	}
	if o.UnitRescale {
		f |= FlagUnitRescale
	}
	if o.Centre {
		f |= FlagCentre
	}
	return f
}

func (o Options) needsPostProcess() bool {
	return o.Centre || o.UnitRescale || o.FlipNormals
}
