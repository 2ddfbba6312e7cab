// Completion: 100% - Operation catalog complete
package vise

// The catalog is the single table describing every legal
// (kind, elementType, width) tuple, its operand arity, and whether the
// operation is width-homogeneous (each physical register slice computable
// independently). Lowering strategies are parameterized by these rows
// instead of hand-writing one case per operation.

type elemSet uint16

const (
	elemI8  elemSet = 1 << I8
	elemU8  elemSet = 1 << U8
	elemI16 elemSet = 1 << I16
	elemU16 elemSet = 1 << U16
	elemI32 elemSet = 1 << I32
	elemU32 elemSet = 1 << U32
	elemI64 elemSet = 1 << I64
	elemU64 elemSet = 1 << U64
	elemF32 elemSet = 1 << F32
	elemF64 elemSet = 1 << F64

	elemInts   = elemI8 | elemU8 | elemI16 | elemU16 | elemI32 | elemU32 | elemI64 | elemU64
	elemFloats = elemF32 | elemF64
	elemNarrow = elemI8 | elemU8 | elemI16 | elemU16
	elemWide32 = elemI32 | elemU32 | elemF32
	elemAll    = elemInts | elemFloats
)

func (s elemSet) has(e ElemType) bool { return s&(1<<e) != 0 }

// catalogEntry describes one operation kind.
type catalogEntry struct {
	elems elemSet

	// nSrc counts register/memory source operands (after canonicalizing
	// two-operand aliases): Move has 1, Add has 2, Fma has 3.
	nSrc int

	// needsImm marks shift-by-immediate and MaskReduceBranch (branch
	// displacement) forms.
	needsImm bool

	// needsMask marks forms where the mask operand is mandatory rather
	// than optional predication.
	needsMask bool

	// homogeneous operations can be composed slice-by-slice across the
	// physical registers of a wide logical operand. Horizontal
	// operations cannot.
	homogeneous bool

	// maskable operations accept an optional predicate register.
	maskable bool
}

var catalog = map[Kind]catalogEntry{
	Move:   {elems: elemAll, nSrc: 1, homogeneous: true, maskable: true},
	And:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	AndNot: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Or:     {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Xor:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Not:    {elems: elemAll, nSrc: 1, homogeneous: true, maskable: true},

	Add:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Sub:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Mul:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Div:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Sqrt:   {elems: elemFloats, nSrc: 1, homogeneous: true, maskable: true},
	Min:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	Max:    {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	SatAdd: {elems: elemNarrow, nSrc: 2, homogeneous: true, maskable: true},
	SatSub: {elems: elemNarrow, nSrc: 2, homogeneous: true, maskable: true},

	RcpApprox:   {elems: elemFloats, nSrc: 1, homogeneous: true, maskable: true},
	RcpRefine:   {elems: elemFloats, nSrc: 2, homogeneous: true},
	RsqrtApprox: {elems: elemFloats, nSrc: 1, homogeneous: true, maskable: true},
	RsqrtRefine: {elems: elemFloats, nSrc: 2, homogeneous: true},

	Fma: {elems: elemFloats, nSrc: 3, homogeneous: true, maskable: true},
	Fms: {elems: elemFloats, nSrc: 3, homogeneous: true, maskable: true},

	CmpEq: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	CmpNe: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	CmpLt: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	CmpLe: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	CmpGt: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},
	CmpGe: {elems: elemAll, nSrc: 2, homogeneous: true, maskable: true},

	// Elem names the float side of the pair: cvtf2i.f32 is F32 -> I32,
	// cvti2f.f64 is I64 -> F64.
	CvtFloatToInt: {elems: elemFloats, nSrc: 1, homogeneous: true, maskable: true},
	CvtIntToFloat: {elems: elemFloats, nSrc: 1, homogeneous: true, maskable: true},

	ShiftLeft:            {elems: elemInts, nSrc: 1, needsImm: true, homogeneous: true, maskable: true},
	ShiftRightLogical:    {elems: elemInts, nSrc: 1, needsImm: true, homogeneous: true, maskable: true},
	ShiftRightArith:      {elems: elemInts, nSrc: 1, needsImm: true, homogeneous: true, maskable: true},
	ShiftLeftVar:         {elems: elemInts, nSrc: 2, homogeneous: true, maskable: true},
	ShiftRightLogicalVar: {elems: elemInts, nSrc: 2, homogeneous: true, maskable: true},
	ShiftRightArithVar:   {elems: elemInts, nSrc: 2, homogeneous: true, maskable: true},

	MaskedMerge: {elems: elemAll, nSrc: 2, needsMask: true, homogeneous: true, maskable: true},

	// src1 is the lane-mask value (a predicate register on x86_64, a
	// 0/-1 lane vector on mips64); the immediate is the branch
	// displacement. Horizontal: never composed slice-by-slice.
	MaskReduceBranch: {elems: elemAll, nSrc: 1, needsImm: true},
}

var catalogWidths = map[Width]bool{
	Width128: true,
	Width256: true,
	Width512: true,
	WidthVL:  true,
}

// NewVectorOp validates catalog membership at construction time.
func NewVectorOp(k Kind, e ElemType, w Width) (VectorOp, error) {
	op := VectorOp{Kind: k, Elem: e, Width: w}
	entry, ok := catalog[k]
	if !ok {
		return op, &UnsupportedShapeError{Op: op, Detail: "unknown operation kind"}
	}
	if !entry.elems.has(e) {
		return op, &UnsupportedShapeError{Op: op, Detail: "element type not in catalog for this kind"}
	}
	if !catalogWidths[w] {
		return op, &UnsupportedShapeError{Op: op, Detail: "width not in catalog"}
	}
	return op, nil
}

// Member reports catalog membership without constructing.
func Member(k Kind, e ElemType, w Width) bool {
	_, err := NewVectorOp(k, e, w)
	return err == nil
}

// Canonicalize validates the operand roles against the operation's arity
// and returns the canonical (dst, src1, src2, src3) form. Pure
// lookup/validation; no side effects.
func Canonicalize(op VectorOp, args Args) (Args, error) {
	entry, ok := catalog[op.Kind]
	if !ok || !entry.elems.has(op.Elem) {
		return args, &UnsupportedShapeError{Op: op, Detail: "not a catalog member"}
	}

	if op.Kind == MaskReduceBranch {
		if args.Src1 == nil {
			return args, &UnsupportedShapeError{Op: op, Detail: "mask source operand required"}
		}
		if args.Imm == nil {
			return args, &UnsupportedShapeError{Op: op, Detail: "branch displacement immediate required"}
		}
		return args, nil
	}

	if args.Dst == nil {
		return args, &UnsupportedShapeError{Op: op, Detail: "destination operand required"}
	}
	srcs := 0
	for _, s := range []Operand{args.Src1, args.Src2, args.Src3} {
		if s != nil {
			srcs++
		}
	}
	if srcs != entry.nSrc {
		return args, &UnsupportedShapeError{
			Op:     op,
			Detail: "operand count does not match operation arity",
		}
	}
	if entry.needsImm && args.Imm == nil {
		return args, &UnsupportedShapeError{Op: op, Detail: "immediate operand required"}
	}
	if !entry.needsImm && args.Imm != nil {
		return args, &UnsupportedShapeError{Op: op, Detail: "operation takes no immediate"}
	}
	if entry.needsMask && args.Mask.Zero() {
		return args, &UnsupportedShapeError{Op: op, Detail: "mask operand required"}
	}
	if !entry.maskable && !args.Mask.Zero() {
		return args, &UnsupportedShapeError{Op: op, Detail: "operation is not maskable"}
	}
	if _, isImm := args.Dst.(Immediate); isImm {
		return args, &UnsupportedShapeError{Op: op, Detail: "immediate cannot be a destination"}
	}
	return args, nil
}

// entryFor panics for kinds outside the catalog; callers run after
// NewVectorOp/Canonicalize validation.
func entryFor(k Kind) catalogEntry {
	entry, ok := catalog[k]
	if !ok {
		panic("BUG: kind missing from catalog")
	}
	return entry
}
