// Completion: 100% - Operation vocabulary complete
package vise

// Kind is one portable vector operation. The vocabulary is closed: a
// (Kind, ElemType, Width) tuple outside the catalog is rejected when the
// VectorOp is constructed, never silently encoded.
type Kind int

const (
	Move Kind = iota

	// bitwise logic
	And
	AndNot
	Or
	Xor
	Not

	// lane arithmetic
	Add
	Sub
	Mul
	Div
	Sqrt
	Min
	Max
	SatAdd
	SatSub

	// reciprocal approximation and refinement
	RcpApprox
	RcpRefine
	RsqrtApprox
	RsqrtRefine

	// fused multiply-add / multiply-subtract
	Fma
	Fms

	// lane compares (result is a predicate mask or a 0/-1 lane vector,
	// depending on the target register file)
	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe

	// conversions
	CvtFloatToInt
	CvtIntToFloat

	// shifts: by shared immediate and per-lane variable count
	ShiftLeft
	ShiftRightLogical
	ShiftRightArith
	ShiftLeftVar
	ShiftRightLogicalVar
	ShiftRightArithVar

	// predication
	MaskedMerge
	MaskReduceBranch

	numKinds
)

var kindNames = map[Kind]string{
	Move:                 "move",
	And:                  "and",
	AndNot:               "andnot",
	Or:                   "or",
	Xor:                  "xor",
	Not:                  "not",
	Add:                  "add",
	Sub:                  "sub",
	Mul:                  "mul",
	Div:                  "div",
	Sqrt:                 "sqrt",
	Min:                  "min",
	Max:                  "max",
	SatAdd:               "satadd",
	SatSub:               "satsub",
	RcpApprox:            "rcpa",
	RcpRefine:            "rcpr",
	RsqrtApprox:          "rsqrta",
	RsqrtRefine:          "rsqrtr",
	Fma:                  "fma",
	Fms:                  "fms",
	CmpEq:                "cmpeq",
	CmpNe:                "cmpne",
	CmpLt:                "cmplt",
	CmpLe:                "cmple",
	CmpGt:                "cmpgt",
	CmpGe:                "cmpge",
	CvtFloatToInt:        "cvtf2i",
	CvtIntToFloat:        "cvti2f",
	ShiftLeft:            "shl",
	ShiftRightLogical:    "shr",
	ShiftRightArith:      "sar",
	ShiftLeftVar:         "shlv",
	ShiftRightLogicalVar: "shrv",
	ShiftRightArithVar:   "sarv",
	MaskedMerge:          "merge",
	MaskReduceBranch:     "maskbr",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// KindByName resolves a mnemonic kind name (cmd/vise input).
func KindByName(name string) (Kind, bool) {
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}
	return 0, false
}

// ElemType is the per-lane element type of a vector operand.
type ElemType int

const (
	I8 ElemType = iota
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	F32
	F64
)

func (e ElemType) Bits() int {
	switch e {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	default:
		return 64
	}
}

func (e ElemType) Bytes() int { return e.Bits() / 8 }

func (e ElemType) IsFloat() bool { return e == F32 || e == F64 }

func (e ElemType) IsSigned() bool {
	switch e {
	case I8, I16, I32, I64, F32, F64:
		return true
	default:
		return false
	}
}

func (e ElemType) String() string {
	switch e {
	case I8:
		return "i8"
	case U8:
		return "u8"
	case I16:
		return "i16"
	case U16:
		return "u16"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case I64:
		return "i64"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// ElemByName resolves an element type name (cmd/vise input).
func ElemByName(name string) (ElemType, bool) {
	for e := I8; e <= F64; e++ {
		if e.String() == name {
			return e, true
		}
	}
	return 0, false
}

// Width is the logical vector width in bits. WidthVL is the
// variable-length width, pinned to a concrete width when the profile is
// constructed.
type Width int

const (
	Width128 Width = 128
	Width256 Width = 256
	Width512 Width = 512
	WidthVL  Width = -1
)

func (w Width) Bytes() int { return int(w) / 8 }

// RoundMode selects the rounding behavior of a float-to-int conversion.
// RoundDefault uses whatever the target's control register holds;
// non-default modes that the instruction cannot encode directly are
// realized with save/set/restore bracketing of the control register.
type RoundMode int

const (
	RoundDefault RoundMode = iota
	RoundNearest           // round to nearest (even)
	RoundDown              // round down (floor)
	RoundUp                // round up (ceil)
	RoundTrunc             // round toward zero (truncate)
)

func (m RoundMode) String() string {
	switch m {
	case RoundDefault:
		return "default"
	case RoundNearest:
		return "nearest"
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	case RoundTrunc:
		return "trunc"
	default:
		return "unknown"
	}
}

// MaskExpect is the aggregate pattern a MaskReduceBranch tests for.
type MaskExpect int

const (
	AllLanesSet MaskExpect = iota
	NoLanesSet
)

func (x MaskExpect) String() string {
	if x == AllLanesSet {
		return "all"
	}
	return "none"
}

// VectorOp identifies one portable vector operation. Construct with
// NewVectorOp so that catalog membership is checked up front.
type VectorOp struct {
	Kind  Kind
	Elem  ElemType
	Width Width

	// Round applies to CvtFloatToInt only.
	Round RoundMode

	// Expect applies to MaskReduceBranch only.
	Expect MaskExpect
}

func (op VectorOp) String() string {
	s := op.Kind.String() + "." + op.Elem.String()
	if op.Width == WidthVL {
		s += ".vl"
	} else {
		s += "." + widthString(op.Width)
	}
	return s
}

func widthString(w Width) string {
	switch w {
	case Width128:
		return "128"
	case Width256:
		return "256"
	case Width512:
		return "512"
	default:
		return "vl"
	}
}

// Lanes is the number of elements in the logical vector.
func (op VectorOp) Lanes() int { return int(op.Width) / op.Elem.Bits() }
