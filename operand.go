// Completion: 100% - Operand model complete
package vise

import "fmt"

// RegClass distinguishes the register files an operand can live in.
type RegClass int

const (
	RegGPR    RegClass = iota // general purpose (scalar) registers
	RegVector                 // vector registers (zmm/ymm/xmm, w0-w31)
	RegMask                   // predicate/mask registers (k0-k7)
	RegFloat                  // scalar FPU registers (MIPS f0-f31)
)

func (c RegClass) String() string {
	switch c {
	case RegGPR:
		return "gpr"
	case RegVector:
		return "vector"
	case RegMask:
		return "mask"
	case RegFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Register is a named physical register with its instruction encoding.
type Register struct {
	Name     string
	Size     int   // Size in bits
	Encoding uint8 // Encoding for instruction generation
	Class    RegClass
}

// Zero returns true for the zero value (no register supplied).
func (r Register) Zero() bool { return r.Name == "" }

func (r Register) String() string { return r.Name }

// Memory is a base+index*scale+displacement operand. The displacement is
// signed; which trailer form it encodes to (byte, word, compressed byte
// times element stride, or full width) is decided by the native encoder.
type Memory struct {
	Base     Register
	Index    Register // zero value means no index
	HasIndex bool
	Scale    uint8 // 1, 2, 4 or 8
	Disp     int32
}

func (m Memory) String() string {
	s := "[" + m.Base.Name
	if m.HasIndex {
		s += fmt.Sprintf("+%s*%d", m.Index.Name, m.Scale)
	}
	if m.Disp != 0 {
		s += fmt.Sprintf("%+d", m.Disp)
	}
	return s + "]"
}

// WithDisp returns a copy of the memory operand with the displacement
// advanced. Used by the composed strategy to step through the slices of a
// wide logical operand.
func (m Memory) WithDisp(extra int32) Memory {
	m.Disp += extra
	return m
}

// Immediate is a constant operand. Bits is the capacity of the target
// field; a value that does not fit is rejected with FieldOverflowError,
// never truncated.
type Immediate struct {
	Value int64
	Bits  uint8
}

func (i Immediate) String() string { return fmt.Sprintf("$%d", i.Value) }

// fits reports whether the value fits the field as a signed or unsigned
// quantity of the given bit width.
func (i Immediate) fits(bits uint8) bool {
	if bits >= 64 {
		return true
	}
	if i.Value >= 0 {
		return i.Value <= int64(1)<<bits-1
	}
	return i.Value >= -(int64(1) << (bits - 1))
}

// Operand is one of Register, Memory or Immediate.
type Operand interface {
	isOperand()
	String() string
}

func (Register) isOperand()  {}
func (Memory) isOperand()    {}
func (Immediate) isOperand() {}

// Args carries the concrete operands for one lowering request in
// canonical three-operand order (destination, first source, second
// source). Two-operand forms are built with Args2, which doubles the
// destination as the first source.
type Args struct {
	Dst  Operand
	Src1 Operand
	Src2 Operand
	Src3 Operand // fused multiply-add addend

	// Mask is an optional predicate register. The all-ones mask register
	// (k0 on x86_64) encodes identically to the unmasked form.
	Mask     Register
	MaskZero bool // zero-masking instead of merge-masking

	// Imm is the immediate for shift-by-immediate forms and the branch
	// displacement for MaskReduceBranch.
	Imm *Immediate
}

// Args2 builds the two-operand convenience alias: dst doubles as src1.
func Args2(dst Operand, src Operand) Args {
	return Args{Dst: dst, Src1: dst, Src2: src}
}

// Args3 builds the canonical three-operand form.
func Args3(dst, src1, src2 Operand) Args {
	return Args{Dst: dst, Src1: src1, Src2: src2}
}
