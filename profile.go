// Completion: 100% - Architecture profiles complete
package vise

import "fmt"

// Capability is one opaque extension capability bit. Revision boundaries
// between extension generations are expressed as capability sets resolved
// at profile construction, never inferred from hardware generation names.
type Capability uint32

const (
	// CapMaskedCompare: compares write a predicate register directly.
	CapMaskedCompare Capability = 1 << iota
	// CapNativeByteMul: 8-bit lane multiply exists in hardware.
	CapNativeByteMul
	// CapNativeSaturate: saturating add/sub exists in hardware.
	CapNativeSaturate
	// CapNarrowArith: 8/16-bit lane add/sub/mul/min/max/compare exist.
	CapNarrowArith
	// CapNarrowVarShift: per-lane variable shifts on 16-bit lanes.
	CapNarrowVarShift
	// CapMaskToScalar: a native mask-to-scalar reduction instruction.
	CapMaskToScalar
	// CapWideMask: mask-to-scalar reduction covers 64-lane masks.
	CapWideMask
	// CapRcpApprox: native low-precision reciprocal/rsqrt approximation.
	CapRcpApprox
	// CapFloatLogic: float-typed bitwise logic encodings.
	CapFloatLogic
)

// SchemeID selects between mutually exclusive native encodings of the
// same operation on one extension family. Exactly one is active per
// profile, chosen at construction time, never mixed within one lowering.
type SchemeID uint8

const (
	// SchemeIntBitwise encodes float bitwise logic with the integer
	// bitwise forms (bit patterns are identical).
	SchemeIntBitwise SchemeID = iota
	// SchemeFloatNative uses the float-typed logic encodings gained by
	// the later extension revision.
	SchemeFloatNative
)

// Revision tags for the x86 512-bit extension family. The exact feature
// boundary is opaque; each revision is just a capability set.
type Revision int

const (
	Rev1 Revision = 1
	Rev2 Revision = 2
)

// Knobs are the accuracy/compatibility inputs the emulation sequencer
// reads from the profile instead of hard-coding per operation.
type Knobs struct {
	// RefineSteps is the Newton-Raphson step count applied after a
	// native reciprocal/rsqrt approximation.
	RefineSteps int
	// AccuracyBits is the declared relative-accuracy target (bits) the
	// refined result must reach.
	AccuracyBits int
}

// DefaultKnobs: two refinement steps on a 14-bit approximation reach full
// double precision minus rounding slack.
func DefaultKnobs() Knobs { return Knobs{RefineSteps: 2, AccuracyBits: 50} }

// Profile describes one target build: native vector width, register
// count, capability set and active encoding scheme. Constructed once and
// read-only thereafter; changing the target means building a new Profile.
type Profile struct {
	arch        Arch
	name        string
	nativeBits  int
	vecRegs     int
	caps        Capability
	scheme      SchemeID
	pinnedWidth Width
	knobs       Knobs

	// approxBits is the precision of the native reciprocal/rsqrt
	// approximation, when CapRcpApprox is set.
	approxBits int
}

// NewAVX512Profile builds a profile for the prefixed-register-file family
// at the given extension revision.
func NewAVX512Profile(rev Revision, k Knobs) *Profile {
	p := &Profile{
		arch:        ArchX86_64,
		nativeBits:  512,
		vecRegs:     32,
		pinnedWidth: Width512,
		knobs:       normalizeKnobs(k),
		approxBits:  14,
	}
	switch rev {
	case Rev2:
		p.name = "avx512.2"
		p.caps = CapMaskedCompare | CapMaskToScalar | CapRcpApprox |
			CapNarrowArith | CapNativeSaturate | CapNarrowVarShift |
			CapWideMask | CapFloatLogic
		p.scheme = SchemeFloatNative
	default:
		p.name = "avx512.1"
		p.caps = CapMaskedCompare | CapMaskToScalar | CapRcpApprox
		p.scheme = SchemeIntBitwise
	}
	return p
}

// NewMSAProfile builds a profile for the fixed-width family: 128-bit
// native registers, no predicate file, compares producing 0/-1 lanes.
func NewMSAProfile(k Knobs) *Profile {
	return &Profile{
		arch:        ArchMIPS64,
		name:        "msa",
		nativeBits:  128,
		vecRegs:     32,
		pinnedWidth: Width128,
		knobs:       normalizeKnobs(k),
		caps:        CapNativeByteMul | CapNativeSaturate | CapNarrowArith | CapNarrowVarShift,
		scheme:      SchemeIntBitwise,
	}
}

// ProfileByName resolves the profile names accepted by cmd/vise.
func ProfileByName(name string, k Knobs) (*Profile, error) {
	switch name {
	case "avx512.1":
		return NewAVX512Profile(Rev1, k), nil
	case "avx512.2":
		return NewAVX512Profile(Rev2, k), nil
	case "msa":
		return NewMSAProfile(k), nil
	default:
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
}

func normalizeKnobs(k Knobs) Knobs {
	if k.RefineSteps <= 0 {
		k.RefineSteps = DefaultKnobs().RefineSteps
	}
	if k.AccuracyBits <= 0 {
		k.AccuracyBits = DefaultKnobs().AccuracyBits
	}
	return k
}

func (p *Profile) Arch() Arch          { return p.arch }
func (p *Profile) Name() string        { return p.name }
func (p *Profile) NativeWidth() int    { return p.nativeBits }
func (p *Profile) VectorRegCount() int { return p.vecRegs }
func (p *Profile) RefineSteps() int    { return p.knobs.RefineSteps }
func (p *Profile) AccuracyBits() int   { return p.knobs.AccuracyBits }
func (p *Profile) ApproxBits() int     { return p.approxBits }

func (p *Profile) String() string {
	return fmt.Sprintf("%s (%s, %d-bit native, %d vector registers)",
		p.name, p.arch, p.nativeBits, p.vecRegs)
}

// Has reports one capability bit.
func (p *Profile) Has(c Capability) bool { return p.caps&c == c }

// ResolveWidth pins the variable-length width to the profile's choice.
func (p *Profile) ResolveWidth(w Width) Width {
	if w == WidthVL {
		return p.pinnedWidth
	}
	return w
}

// NativeWidthRegisters reports how many physical registers one logical
// operand of the given width spans. A 512-bit logical operand spans four
// physical registers when the native width is 128 bits.
func (p *Profile) NativeWidthRegisters(w Width) int {
	w = p.ResolveWidth(w)
	n := int(w) / p.nativeBits
	if n < 1 {
		n = 1
	}
	return n
}

// physBits is the physical register width one slice occupies: the
// logical width for sub-native operations, the native width otherwise.
func (p *Profile) physBits(w Width) int {
	w = p.ResolveWidth(w)
	if int(w) < p.nativeBits {
		return int(w)
	}
	return p.nativeBits
}

// HasNative reports whether the profile encodes (kind, elem) directly.
// The answer is derived from the encoding tables plus the capability set,
// so the tables stay the single source of truth.
func (p *Profile) HasNative(k Kind, e ElemType) bool {
	switch p.arch {
	case ArchX86_64:
		ent, ok := x86Lookup(k, e, p.scheme)
		return ok && p.Has(ent.needs)
	case ArchMIPS64:
		ent, ok := msaLookup(k, e)
		return ok && p.Has(ent.needs)
	default:
		return false
	}
}

// SchemeFor reports which of the alternative native encodings the profile
// uses for an operation. Meaningful when more than one scheme exists
// (float bitwise logic on the prefixed family).
func (p *Profile) SchemeFor(k Kind, e ElemType) SchemeID {
	if p.arch == ArchX86_64 && e.IsFloat() && isLogicKind(k) {
		return p.scheme
	}
	return SchemeIntBitwise
}

func isLogicKind(k Kind) bool {
	switch k {
	case And, AndNot, Or, Xor, Not:
		return true
	default:
		return false
	}
}

// Designated scratch registers. MaskReduceBranch and emulated sequences
// clobber these; callers must not hold live values in them across a plan.

func (p *Profile) scratchGPR() Register {
	if p.arch == ArchX86_64 {
		r, _ := GetRegister(ArchX86_64, "rax")
		return r
	}
	r, _ := GetRegister(ArchMIPS64, "t8")
	return r
}

func (p *Profile) scratchGPR2() Register {
	if p.arch == ArchX86_64 {
		r, _ := GetRegister(ArchX86_64, "rcx")
		return r
	}
	r, _ := GetRegister(ArchMIPS64, "t9")
	return r
}

func (p *Profile) scratchGPR3() Register {
	if p.arch == ArchX86_64 {
		r, _ := GetRegister(ArchX86_64, "rdx")
		return r
	}
	r, _ := GetRegister(ArchMIPS64, "at")
	return r
}

// scratchVec returns the i-th designated scratch vector register counted
// from the top of the file (the register allocator in the issuing front
// end keeps these free around emulated plans).
func (p *Profile) scratchVec(i int, widthBits int) Register {
	r, ok := VectorRegister(p.arch, p.vecRegs-1-i, widthBits)
	if !ok {
		panic("BUG: scratch vector register out of range")
	}
	return r
}

// scratchFPR is the scalar FPU register pair used by emulated float
// lanes on the fixed-width family.
func (p *Profile) scratchFPR(i int) Register {
	r, _ := GetRegister(ArchMIPS64, fmt.Sprintf("f%d", 4+2*i))
	return r
}
