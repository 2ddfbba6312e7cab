// Completion: 100% - Scratch memory description complete
package vise

// ScratchRegion is a caller-provided spill area addressed off a base
// general register. The emulation sequencer and the rounding-mode
// bracket stage lane values here; the region's contents are undefined
// after any plan that used it.
type ScratchRegion struct {
	Base Register
	// Off is the region's displacement off the base register; the two
	// regions of a pair may share one base at different offsets.
	Off  int32
	Size int32
}

// Mem addresses one offset inside the region.
func (s ScratchRegion) Mem(disp int32) Memory {
	return Memory{Base: s.Base, Disp: s.Off + disp}
}

func (s ScratchRegion) fitsWidth(w Width) bool {
	return int32(w.Bytes()) <= s.Size
}

// ScratchPair is the two disjoint regions round-trip emulation needs:
// one per vector source. Plans that only park the control word use
// region A alone.
type ScratchPair struct {
	A ScratchRegion
	B ScratchRegion
}
