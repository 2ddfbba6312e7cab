// Completion: 100% - MIPS64 MSA opcode tables complete
package vise

// Opcode tables for the fixed-width SIMD family. Every instruction is a
// single 32-bit word built from the MSA major opcode plus a
// format-specific field split:
//
//   3R   major | op(3)  | df(2) | wt(5) | ws(5) | wd(5) | minor(6)
//   3RF  major | op(4)  | df(1) | wt(5) | ws(5) | wd(5) | minor(6)
//   VEC  major | op(5)          | wt(5) | ws(5) | wd(5) | minor(6)
//   BIT  major | op(3)  | dfm(7)        | ws(5) | wd(5) | minor(6)
//   MI10 major | s10(10)        | rs(5) | wd(5) | minor(4) | df(2)
//   2R   major | op(8)  | df(2)         | ws(5) | wd(5) | minor(6)
//
// The BIT format folds the data format into the immediate field: the
// leading zero run of dfm selects the element width and the remaining
// low bits carry the shift amount.

type msaFmt uint8

const (
	fmt3R msaFmt = iota
	fmt3RF
	fmtVEC
	fmtBIT
)

// minor opcode groups
const (
	msaMinArith  = 0x0E // addv/subv/min/max
	msaMinMul    = 0x12 // mulv/div
	msaMinSat    = 0x10 // adds/subs
	msaMinCmp    = 0x0F // ceq/clt/cle
	msaMinShift  = 0x0D // sll/sra/srl
	msaMinBIT    = 0x09
	msaMinVEC    = 0x1E
	msaMinFArith = 0x1B // fadd..ftrunc
	msaMinFCmp   = 0x1C // fceq..fcle
	msaMin2R     = 0x1E
	msaMinMI10Ld = 0x8
	msaMinMI10St = 0x9
)

type msaEntry struct {
	mnemonic string
	fmt      msaFmt
	op       uint8
	minor    uint8
	needs    Capability

	// swap emits the row with its two sources exchanged (greater-than
	// via less-than).
	swap bool
	// negate appends a lane-wide NOR of the result (not-equal via
	// equal).
	negate bool
	// unary rows repeat the single source in both source fields.
	unary bool
}

func msa3REntry(mn string, op uint8, minor uint8) msaEntry {
	return msaEntry{mnemonic: mn, fmt: fmt3R, op: op, minor: minor}
}

func msaFEntry(mn string, op uint8, minor uint8) msaEntry {
	return msaEntry{mnemonic: mn, fmt: fmt3RF, op: op, minor: minor}
}

func msaVECEntry(mn string, op uint8) msaEntry {
	return msaEntry{mnemonic: mn, fmt: fmtVEC, op: op, minor: msaMinVEC}
}

// msaLookup resolves the native row for (kind, element). Signedness
// picks between the _s and _u forms; floats route to the 3RF groups.
// A false return sends the operation to the emulation sequencer.
func msaLookup(k Kind, e ElemType) (msaEntry, bool) {
	f := e.IsFloat()
	s := e.IsSigned()

	switch k {
	case Move:
		// reg-reg moves copy through the bitwise unit; loads and stores
		// take the MI10 path inside the encoder
		ent := msaVECEntry("or.v", 0x01)
		ent.unary = true
		return ent, true

	case And:
		return msaVECEntry("and.v", 0x00), true
	case Or:
		return msaVECEntry("or.v", 0x01), true
	case Xor:
		return msaVECEntry("xor.v", 0x03), true
	case Not:
		ent := msaVECEntry("nor.v", 0x02)
		ent.unary = true
		return ent, true
	case AndNot:
		// nor.v into dst then and.v; a two-word sequence built by the
		// encoder
		ent := msaVECEntry("nor.v", 0x02)
		ent.mnemonic = "nor.v+and.v"
		return ent, true

	case Add:
		if f {
			return msaFEntry("fadd", 0x0, msaMinFArith), true
		}
		return msa3REntry("addv", 0x0, msaMinArith), true
	case Sub:
		if f {
			return msaFEntry("fsub", 0x1, msaMinFArith), true
		}
		return msa3REntry("subv", 0x1, msaMinArith), true
	case Mul:
		if f {
			return msaFEntry("fmul", 0x2, msaMinFArith), true
		}
		ent := msa3REntry("mulv", 0x0, msaMinMul)
		if e.Bits() == 8 {
			ent.needs = CapNativeByteMul
		}
		return ent, true
	case Div:
		if f {
			return msaFEntry("fdiv", 0x3, msaMinFArith), true
		}
		if s {
			return msa3REntry("div_s", 0x4, msaMinMul), true
		}
		return msa3REntry("div_u", 0x5, msaMinMul), true
	case Sqrt:
		if !f {
			return msaEntry{}, false
		}
		ent := msaFEntry("fsqrt", 0x6, msaMinFArith)
		ent.unary = true
		return ent, true

	case Min:
		if f {
			return msaFEntry("fmin", 0x4, msaMinFArith), true
		}
		if s {
			return msa3REntry("min_s", 0x4, msaMinArith), true
		}
		return msa3REntry("min_u", 0x5, msaMinArith), true
	case Max:
		if f {
			return msaFEntry("fmax", 0x5, msaMinFArith), true
		}
		if s {
			return msa3REntry("max_s", 0x2, msaMinArith), true
		}
		return msa3REntry("max_u", 0x3, msaMinArith), true

	case SatAdd:
		if s {
			return msa3REntry("adds_s", 0x0, msaMinSat), true
		}
		return msa3REntry("adds_u", 0x1, msaMinSat), true
	case SatSub:
		if s {
			return msa3REntry("subs_s", 0x2, msaMinSat), true
		}
		return msa3REntry("subs_u", 0x3, msaMinSat), true

	case Fma:
		return msaFEntry("fmadd", 0x7, msaMinFArith), true
	case Fms:
		// fmul into scratch then fsub; built by the encoder
		ent := msaFEntry("fmul+fsub", 0x2, msaMinFArith)
		return ent, true

	case CmpEq:
		if f {
			return msaFEntry("fceq", 0x0, msaMinFCmp), true
		}
		return msa3REntry("ceq", 0x0, msaMinCmp), true
	case CmpNe:
		if f {
			return msaFEntry("fcne", 0x1, msaMinFCmp), true
		}
		ent := msa3REntry("ceq", 0x0, msaMinCmp)
		ent.negate = true
		return ent, true
	case CmpLt:
		if f {
			return msaFEntry("fclt", 0x2, msaMinFCmp), true
		}
		if s {
			return msa3REntry("clt_s", 0x2, msaMinCmp), true
		}
		return msa3REntry("clt_u", 0x3, msaMinCmp), true
	case CmpLe:
		if f {
			return msaFEntry("fcle", 0x3, msaMinFCmp), true
		}
		if s {
			return msa3REntry("cle_s", 0x4, msaMinCmp), true
		}
		return msa3REntry("cle_u", 0x5, msaMinCmp), true
	case CmpGt:
		ent, ok := msaLookup(CmpLt, e)
		ent.swap = true
		return ent, ok
	case CmpGe:
		ent, ok := msaLookup(CmpLe, e)
		ent.swap = true
		return ent, ok

	case CvtIntToFloat:
		return msaFEntry("ffint_s", 0x9, msaMinFArith), true
	case CvtFloatToInt:
		// ftint follows the control-register rounding mode; the
		// truncating form is its own instruction
		return msaFEntry("ftint_s", 0xA, msaMinFArith), true

	case ShiftLeft:
		return msaEntry{mnemonic: "slli", fmt: fmtBIT, op: 0x0, minor: msaMinBIT}, true
	case ShiftRightArith:
		return msaEntry{mnemonic: "srai", fmt: fmtBIT, op: 0x1, minor: msaMinBIT}, true
	case ShiftRightLogical:
		return msaEntry{mnemonic: "srli", fmt: fmtBIT, op: 0x2, minor: msaMinBIT}, true
	case ShiftLeftVar:
		return msa3REntry("sll", 0x0, msaMinShift), true
	case ShiftRightArithVar:
		return msa3REntry("sra", 0x1, msaMinShift), true
	case ShiftRightLogicalVar:
		return msa3REntry("srl", 0x2, msaMinShift), true

	case MaskedMerge:
		// mask copies into the destination, then bsel.v selects
		return msaVECEntry("bsel.v", 0x06), true

	case MaskReduceBranch:
		// lane tree plus a vector branch; built by the synthesizer
		return msaEntry{mnemonic: "bnz"}, true
	}
	return msaEntry{}, false
}

// msaTruncEntry is the truncating conversion form.
func msaTruncEntry() msaEntry {
	return msaFEntry("ftrunc_s", 0xB, msaMinFArith)
}
