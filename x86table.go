// Completion: 100% - x86_64 opcode tables complete
package vise

// Opcode tables for the prefixed-register-file family. One row per legal
// (kind, element) pair; the lowering strategies dispatch over these rows
// instead of hand-writing one case per operation. A missing row means the
// profile has no direct encoding and the operation routes to emulation.
//
// Row fields follow the EVEX prefix vocabulary:
//   mm  opcode map: 1 = 0F, 2 = 0F38, 3 = 0F3A
//   pp  mandatory prefix: 0 = none, 1 = 66, 2 = F3, 3 = F2
//   w   the EVEX.W element-width bit

const (
	mm0F   = 1
	mm0F38 = 2
	mm0F3A = 3

	ppNone = 0
	pp66   = 1
	ppF3   = 2
	ppF2   = 3
)

type x86Entry struct {
	mnemonic string
	opc      uint8
	mm       uint8
	pp       uint8
	w        uint8

	// needs is the capability set the profile must carry for this row.
	needs Capability

	// imm8 is a fixed trailing immediate (compare predicates, ternary
	// logic tables); -1 when the row has none.
	imm8 int16

	// group is the ModRM.reg field for group-encoded forms
	// (shift-by-immediate, where the destination moves to EVEX.vvvv);
	// 0xFF for ordinary /r rows.
	group uint8

	// kdst rows write a mask register instead of a vector register.
	kdst bool

	// storeOpc is the reg-to-memory direction opcode (moves); 0 if the
	// row has no store form.
	storeOpc uint8

	// altOpc/altPP/altMn replace opc/pp/mnemonic for the truncating
	// conversion form.
	altOpc uint8
	altPP  uint8
	altMn  string
	hasAlt bool
}

type x86Key struct {
	k Kind
	e ElemType
}

// x86Lookup resolves the active encoding for (kind, element) under the
// profile's scheme. Exactly one scheme is consulted; encodings from
// different schemes are never mixed within one lowering.
func x86Lookup(k Kind, e ElemType, scheme SchemeID) (x86Entry, bool) {
	if scheme == SchemeFloatNative && e.IsFloat() {
		if ent, ok := x86FloatLogicTable[x86Key{k, e}]; ok {
			return ent, true
		}
	}
	ent, ok := x86Table[x86Key{k, e}]
	return ent, ok
}

// row builds a plain three-operand row.
func row(mn string, opc, mm, pp, w uint8, needs Capability) x86Entry {
	return x86Entry{mnemonic: mn, opc: opc, mm: mm, pp: pp, w: w, needs: needs, imm8: -1, group: 0xFF}
}

// cmpRow builds a compare row writing a mask register, with its fixed
// predicate immediate.
func cmpRow(mn string, opc, mm, pp, w uint8, pred uint8, needs Capability) x86Entry {
	e := row(mn, opc, mm, pp, w, needs|CapMaskedCompare)
	e.imm8 = int16(pred)
	e.kdst = true
	return e
}

// shiftRow builds a group-encoded shift-by-immediate row.
func shiftRow(mn string, opc uint8, w uint8, group uint8, needs Capability) x86Entry {
	e := row(mn, opc, mm0F, pp66, w, needs)
	e.group = group
	return e
}

var x86Table = map[x86Key]x86Entry{
	// ---- moves (load form; storeOpc is the reverse direction) ----
	{Move, I8}:  moveRow("vmovdqu8", 0x6F, 0x7F, ppF2, 0),
	{Move, U8}:  moveRow("vmovdqu8", 0x6F, 0x7F, ppF2, 0),
	{Move, I16}: moveRow("vmovdqu16", 0x6F, 0x7F, ppF2, 1),
	{Move, U16}: moveRow("vmovdqu16", 0x6F, 0x7F, ppF2, 1),
	{Move, I32}: moveRow("vmovdqu32", 0x6F, 0x7F, ppF3, 0),
	{Move, U32}: moveRow("vmovdqu32", 0x6F, 0x7F, ppF3, 0),
	{Move, I64}: moveRow("vmovdqu64", 0x6F, 0x7F, ppF3, 1),
	{Move, U64}: moveRow("vmovdqu64", 0x6F, 0x7F, ppF3, 1),
	{Move, F32}: moveRow("vmovups", 0x10, 0x11, ppNone, 0),
	{Move, F64}: moveRow("vmovupd", 0x10, 0x11, pp66, 1),

	// ---- bitwise logic (integer forms; bit patterns are identical for
	// every lane width, so 8/16-bit lanes share the dword rows) ----
	{And, I8}:  row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, U8}:  row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, I16}: row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, U16}: row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, I32}: row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, U32}: row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, I64}: row("vpandq", 0xDB, mm0F, pp66, 1, 0),
	{And, U64}: row("vpandq", 0xDB, mm0F, pp66, 1, 0),
	{And, F32}: row("vpandd", 0xDB, mm0F, pp66, 0, 0),
	{And, F64}: row("vpandq", 0xDB, mm0F, pp66, 1, 0),

	{AndNot, I8}:  row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, U8}:  row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, I16}: row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, U16}: row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, I32}: row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, U32}: row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, I64}: row("vpandnq", 0xDF, mm0F, pp66, 1, 0),
	{AndNot, U64}: row("vpandnq", 0xDF, mm0F, pp66, 1, 0),
	{AndNot, F32}: row("vpandnd", 0xDF, mm0F, pp66, 0, 0),
	{AndNot, F64}: row("vpandnq", 0xDF, mm0F, pp66, 1, 0),

	{Or, I8}:  row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, U8}:  row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, I16}: row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, U16}: row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, I32}: row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, U32}: row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, I64}: row("vporq", 0xEB, mm0F, pp66, 1, 0),
	{Or, U64}: row("vporq", 0xEB, mm0F, pp66, 1, 0),
	{Or, F32}: row("vpord", 0xEB, mm0F, pp66, 0, 0),
	{Or, F64}: row("vporq", 0xEB, mm0F, pp66, 1, 0),

	{Xor, I8}:  row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, U8}:  row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, I16}: row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, U16}: row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, I32}: row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, U32}: row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, I64}: row("vpxorq", 0xEF, mm0F, pp66, 1, 0),
	{Xor, U64}: row("vpxorq", 0xEF, mm0F, pp66, 1, 0),
	{Xor, F32}: row("vpxord", 0xEF, mm0F, pp66, 0, 0),
	{Xor, F64}: row("vpxorq", 0xEF, mm0F, pp66, 1, 0),

	// NOT is the ternary-logic form with table 0x33 (~B) over
	// (dst, src, src).
	{Not, I8}:  notRow(0),
	{Not, U8}:  notRow(0),
	{Not, I16}: notRow(0),
	{Not, U16}: notRow(0),
	{Not, I32}: notRow(0),
	{Not, U32}: notRow(0),
	{Not, I64}: notRow(1),
	{Not, U64}: notRow(1),
	{Not, F32}: notRow(0),
	{Not, F64}: notRow(1),

	// ---- lane arithmetic ----
	{Add, I8}:  row("vpaddb", 0xFC, mm0F, pp66, 0, CapNarrowArith),
	{Add, U8}:  row("vpaddb", 0xFC, mm0F, pp66, 0, CapNarrowArith),
	{Add, I16}: row("vpaddw", 0xFD, mm0F, pp66, 0, CapNarrowArith),
	{Add, U16}: row("vpaddw", 0xFD, mm0F, pp66, 0, CapNarrowArith),
	{Add, I32}: row("vpaddd", 0xFE, mm0F, pp66, 0, 0),
	{Add, U32}: row("vpaddd", 0xFE, mm0F, pp66, 0, 0),
	{Add, I64}: row("vpaddq", 0xD4, mm0F, pp66, 1, 0),
	{Add, U64}: row("vpaddq", 0xD4, mm0F, pp66, 1, 0),
	{Add, F32}: row("vaddps", 0x58, mm0F, ppNone, 0, 0),
	{Add, F64}: row("vaddpd", 0x58, mm0F, pp66, 1, 0),

	{Sub, I8}:  row("vpsubb", 0xF8, mm0F, pp66, 0, CapNarrowArith),
	{Sub, U8}:  row("vpsubb", 0xF8, mm0F, pp66, 0, CapNarrowArith),
	{Sub, I16}: row("vpsubw", 0xF9, mm0F, pp66, 0, CapNarrowArith),
	{Sub, U16}: row("vpsubw", 0xF9, mm0F, pp66, 0, CapNarrowArith),
	{Sub, I32}: row("vpsubd", 0xFA, mm0F, pp66, 0, 0),
	{Sub, U32}: row("vpsubd", 0xFA, mm0F, pp66, 0, 0),
	{Sub, I64}: row("vpsubq", 0xFB, mm0F, pp66, 1, 0),
	{Sub, U64}: row("vpsubq", 0xFB, mm0F, pp66, 1, 0),
	{Sub, F32}: row("vsubps", 0x5C, mm0F, ppNone, 0, 0),
	{Sub, F64}: row("vsubpd", 0x5C, mm0F, pp66, 1, 0),

	// no byte-lane multiply row: the family never grew one
	// (CapNativeByteMul stays clear on every revision)
	{Mul, I16}: row("vpmullw", 0xD5, mm0F, pp66, 0, CapNarrowArith),
	{Mul, U16}: row("vpmullw", 0xD5, mm0F, pp66, 0, CapNarrowArith),
	{Mul, I32}: row("vpmulld", 0x40, mm0F38, pp66, 0, 0),
	{Mul, U32}: row("vpmulld", 0x40, mm0F38, pp66, 0, 0),
	{Mul, I64}: row("vpmullq", 0x40, mm0F38, pp66, 1, 0),
	{Mul, U64}: row("vpmullq", 0x40, mm0F38, pp66, 1, 0),
	{Mul, F32}: row("vmulps", 0x59, mm0F, ppNone, 0, 0),
	{Mul, F64}: row("vmulpd", 0x59, mm0F, pp66, 1, 0),

	// integer division has no vector form; it round-trips through the
	// scalar divide
	{Div, F32}: row("vdivps", 0x5E, mm0F, ppNone, 0, 0),
	{Div, F64}: row("vdivpd", 0x5E, mm0F, pp66, 1, 0),

	{Sqrt, F32}: row("vsqrtps", 0x51, mm0F, ppNone, 0, 0),
	{Sqrt, F64}: row("vsqrtpd", 0x51, mm0F, pp66, 1, 0),

	{Min, I8}:  row("vpminsb", 0x38, mm0F38, pp66, 0, CapNarrowArith),
	{Min, U8}:  row("vpminub", 0xDA, mm0F, pp66, 0, CapNarrowArith),
	{Min, I16}: row("vpminsw", 0xEA, mm0F, pp66, 0, CapNarrowArith),
	{Min, U16}: row("vpminuw", 0x3A, mm0F38, pp66, 0, CapNarrowArith),
	{Min, I32}: row("vpminsd", 0x39, mm0F38, pp66, 0, 0),
	{Min, U32}: row("vpminud", 0x3B, mm0F38, pp66, 0, 0),
	{Min, I64}: row("vpminsq", 0x39, mm0F38, pp66, 1, 0),
	{Min, U64}: row("vpminuq", 0x3B, mm0F38, pp66, 1, 0),
	{Min, F32}: row("vminps", 0x5D, mm0F, ppNone, 0, 0),
	{Min, F64}: row("vminpd", 0x5D, mm0F, pp66, 1, 0),

	{Max, I8}:  row("vpmaxsb", 0x3C, mm0F38, pp66, 0, CapNarrowArith),
	{Max, U8}:  row("vpmaxub", 0xDE, mm0F, pp66, 0, CapNarrowArith),
	{Max, I16}: row("vpmaxsw", 0xEE, mm0F, pp66, 0, CapNarrowArith),
	{Max, U16}: row("vpmaxuw", 0x3E, mm0F38, pp66, 0, CapNarrowArith),
	{Max, I32}: row("vpmaxsd", 0x3D, mm0F38, pp66, 0, 0),
	{Max, U32}: row("vpmaxud", 0x3F, mm0F38, pp66, 0, 0),
	{Max, I64}: row("vpmaxsq", 0x3D, mm0F38, pp66, 1, 0),
	{Max, U64}: row("vpmaxuq", 0x3F, mm0F38, pp66, 1, 0),
	{Max, F32}: row("vmaxps", 0x5F, mm0F, ppNone, 0, 0),
	{Max, F64}: row("vmaxpd", 0x5F, mm0F, pp66, 1, 0),

	{SatAdd, I8}:  row("vpaddsb", 0xEC, mm0F, pp66, 0, CapNativeSaturate),
	{SatAdd, U8}:  row("vpaddusb", 0xDC, mm0F, pp66, 0, CapNativeSaturate),
	{SatAdd, I16}: row("vpaddsw", 0xED, mm0F, pp66, 0, CapNativeSaturate),
	{SatAdd, U16}: row("vpaddusw", 0xDD, mm0F, pp66, 0, CapNativeSaturate),
	{SatSub, I8}:  row("vpsubsb", 0xE8, mm0F, pp66, 0, CapNativeSaturate),
	{SatSub, U8}:  row("vpsubusb", 0xD8, mm0F, pp66, 0, CapNativeSaturate),
	{SatSub, I16}: row("vpsubsw", 0xE9, mm0F, pp66, 0, CapNativeSaturate),
	{SatSub, U16}: row("vpsubusw", 0xD9, mm0F, pp66, 0, CapNativeSaturate),

	// ---- reciprocal approximations (low precision; the lowering
	// engine appends Newton-Raphson steps per the profile's accuracy
	// knob) ----
	{RcpApprox, F32}:   row("vrcp14ps", 0x4C, mm0F38, pp66, 0, CapRcpApprox),
	{RcpApprox, F64}:   row("vrcp14pd", 0x4C, mm0F38, pp66, 1, CapRcpApprox),
	{RsqrtApprox, F32}: row("vrsqrt14ps", 0x4E, mm0F38, pp66, 0, CapRcpApprox),
	{RsqrtApprox, F64}: row("vrsqrt14pd", 0x4E, mm0F38, pp66, 1, CapRcpApprox),

	// ---- fused multiply-add (213 form: dst = src2*dst + src3, so the
	// canonical form requires dst to alias src1) ----
	{Fma, F32}: row("vfmadd213ps", 0xA8, mm0F38, pp66, 0, 0),
	{Fma, F64}: row("vfmadd213pd", 0xA8, mm0F38, pp66, 1, 0),
	{Fms, F32}: row("vfmsub213ps", 0xAA, mm0F38, pp66, 0, 0),
	{Fms, F64}: row("vfmsub213pd", 0xAA, mm0F38, pp66, 1, 0),

	// ---- compares (destination is a mask register; the predicate
	// rides in the trailing immediate) ----
	{CmpEq, I8}:  cmpRow("vpcmpb", 0x3F, mm0F3A, pp66, 0, 0, CapNarrowArith),
	{CmpNe, I8}:  cmpRow("vpcmpb", 0x3F, mm0F3A, pp66, 0, 4, CapNarrowArith),
	{CmpLt, I8}:  cmpRow("vpcmpb", 0x3F, mm0F3A, pp66, 0, 1, CapNarrowArith),
	{CmpLe, I8}:  cmpRow("vpcmpb", 0x3F, mm0F3A, pp66, 0, 2, CapNarrowArith),
	{CmpGe, I8}:  cmpRow("vpcmpb", 0x3F, mm0F3A, pp66, 0, 5, CapNarrowArith),
	{CmpGt, I8}:  cmpRow("vpcmpb", 0x3F, mm0F3A, pp66, 0, 6, CapNarrowArith),
	{CmpEq, U8}:  cmpRow("vpcmpub", 0x3E, mm0F3A, pp66, 0, 0, CapNarrowArith),
	{CmpNe, U8}:  cmpRow("vpcmpub", 0x3E, mm0F3A, pp66, 0, 4, CapNarrowArith),
	{CmpLt, U8}:  cmpRow("vpcmpub", 0x3E, mm0F3A, pp66, 0, 1, CapNarrowArith),
	{CmpLe, U8}:  cmpRow("vpcmpub", 0x3E, mm0F3A, pp66, 0, 2, CapNarrowArith),
	{CmpGe, U8}:  cmpRow("vpcmpub", 0x3E, mm0F3A, pp66, 0, 5, CapNarrowArith),
	{CmpGt, U8}:  cmpRow("vpcmpub", 0x3E, mm0F3A, pp66, 0, 6, CapNarrowArith),
	{CmpEq, I16}: cmpRow("vpcmpw", 0x3F, mm0F3A, pp66, 1, 0, CapNarrowArith),
	{CmpNe, I16}: cmpRow("vpcmpw", 0x3F, mm0F3A, pp66, 1, 4, CapNarrowArith),
	{CmpLt, I16}: cmpRow("vpcmpw", 0x3F, mm0F3A, pp66, 1, 1, CapNarrowArith),
	{CmpLe, I16}: cmpRow("vpcmpw", 0x3F, mm0F3A, pp66, 1, 2, CapNarrowArith),
	{CmpGe, I16}: cmpRow("vpcmpw", 0x3F, mm0F3A, pp66, 1, 5, CapNarrowArith),
	{CmpGt, I16}: cmpRow("vpcmpw", 0x3F, mm0F3A, pp66, 1, 6, CapNarrowArith),
	{CmpEq, U16}: cmpRow("vpcmpuw", 0x3E, mm0F3A, pp66, 1, 0, CapNarrowArith),
	{CmpNe, U16}: cmpRow("vpcmpuw", 0x3E, mm0F3A, pp66, 1, 4, CapNarrowArith),
	{CmpLt, U16}: cmpRow("vpcmpuw", 0x3E, mm0F3A, pp66, 1, 1, CapNarrowArith),
	{CmpLe, U16}: cmpRow("vpcmpuw", 0x3E, mm0F3A, pp66, 1, 2, CapNarrowArith),
	{CmpGe, U16}: cmpRow("vpcmpuw", 0x3E, mm0F3A, pp66, 1, 5, CapNarrowArith),
	{CmpGt, U16}: cmpRow("vpcmpuw", 0x3E, mm0F3A, pp66, 1, 6, CapNarrowArith),
	{CmpEq, I32}: cmpRow("vpcmpd", 0x1F, mm0F3A, pp66, 0, 0, 0),
	{CmpNe, I32}: cmpRow("vpcmpd", 0x1F, mm0F3A, pp66, 0, 4, 0),
	{CmpLt, I32}: cmpRow("vpcmpd", 0x1F, mm0F3A, pp66, 0, 1, 0),
	{CmpLe, I32}: cmpRow("vpcmpd", 0x1F, mm0F3A, pp66, 0, 2, 0),
	{CmpGe, I32}: cmpRow("vpcmpd", 0x1F, mm0F3A, pp66, 0, 5, 0),
	{CmpGt, I32}: cmpRow("vpcmpd", 0x1F, mm0F3A, pp66, 0, 6, 0),
	{CmpEq, U32}: cmpRow("vpcmpud", 0x1E, mm0F3A, pp66, 0, 0, 0),
	{CmpNe, U32}: cmpRow("vpcmpud", 0x1E, mm0F3A, pp66, 0, 4, 0),
	{CmpLt, U32}: cmpRow("vpcmpud", 0x1E, mm0F3A, pp66, 0, 1, 0),
	{CmpLe, U32}: cmpRow("vpcmpud", 0x1E, mm0F3A, pp66, 0, 2, 0),
	{CmpGe, U32}: cmpRow("vpcmpud", 0x1E, mm0F3A, pp66, 0, 5, 0),
	{CmpGt, U32}: cmpRow("vpcmpud", 0x1E, mm0F3A, pp66, 0, 6, 0),
	{CmpEq, I64}: cmpRow("vpcmpq", 0x1F, mm0F3A, pp66, 1, 0, 0),
	{CmpNe, I64}: cmpRow("vpcmpq", 0x1F, mm0F3A, pp66, 1, 4, 0),
	{CmpLt, I64}: cmpRow("vpcmpq", 0x1F, mm0F3A, pp66, 1, 1, 0),
	{CmpLe, I64}: cmpRow("vpcmpq", 0x1F, mm0F3A, pp66, 1, 2, 0),
	{CmpGe, I64}: cmpRow("vpcmpq", 0x1F, mm0F3A, pp66, 1, 5, 0),
	{CmpGt, I64}: cmpRow("vpcmpq", 0x1F, mm0F3A, pp66, 1, 6, 0),
	{CmpEq, U64}: cmpRow("vpcmpuq", 0x1E, mm0F3A, pp66, 1, 0, 0),
	{CmpNe, U64}: cmpRow("vpcmpuq", 0x1E, mm0F3A, pp66, 1, 4, 0),
	{CmpLt, U64}: cmpRow("vpcmpuq", 0x1E, mm0F3A, pp66, 1, 1, 0),
	{CmpLe, U64}: cmpRow("vpcmpuq", 0x1E, mm0F3A, pp66, 1, 2, 0),
	{CmpGe, U64}: cmpRow("vpcmpuq", 0x1E, mm0F3A, pp66, 1, 5, 0),
	{CmpGt, U64}: cmpRow("vpcmpuq", 0x1E, mm0F3A, pp66, 1, 6, 0),
	{CmpEq, F32}: cmpRow("vcmpps", 0xC2, mm0F, ppNone, 0, 0x00, 0),
	{CmpNe, F32}: cmpRow("vcmpps", 0xC2, mm0F, ppNone, 0, 0x04, 0),
	{CmpLt, F32}: cmpRow("vcmpps", 0xC2, mm0F, ppNone, 0, 0x01, 0),
	{CmpLe, F32}: cmpRow("vcmpps", 0xC2, mm0F, ppNone, 0, 0x02, 0),
	{CmpGe, F32}: cmpRow("vcmpps", 0xC2, mm0F, ppNone, 0, 0x0D, 0),
	{CmpGt, F32}: cmpRow("vcmpps", 0xC2, mm0F, ppNone, 0, 0x0E, 0),
	{CmpEq, F64}: cmpRow("vcmppd", 0xC2, mm0F, pp66, 1, 0x00, 0),
	{CmpNe, F64}: cmpRow("vcmppd", 0xC2, mm0F, pp66, 1, 0x04, 0),
	{CmpLt, F64}: cmpRow("vcmppd", 0xC2, mm0F, pp66, 1, 0x01, 0),
	{CmpLe, F64}: cmpRow("vcmppd", 0xC2, mm0F, pp66, 1, 0x02, 0),
	{CmpGe, F64}: cmpRow("vcmppd", 0xC2, mm0F, pp66, 1, 0x0D, 0),
	{CmpGt, F64}: cmpRow("vcmppd", 0xC2, mm0F, pp66, 1, 0x0E, 0),

	// ---- conversions; the alternative opcode is the per-instruction
	// truncating form, other non-default modes bracket the control
	// register ----
	{CvtFloatToInt, F32}: cvtRow("vcvtps2dq", 0x5B, pp66, 0, "vcvttps2dq", 0x5B, ppF3),
	{CvtFloatToInt, F64}: cvtRow("vcvtpd2qq", 0x7B, pp66, 1, "vcvttpd2qq", 0x7A, pp66),
	{CvtIntToFloat, F32}: row("vcvtdq2ps", 0x5B, mm0F, ppNone, 0, 0),
	{CvtIntToFloat, F64}: row("vcvtqq2pd", 0xE6, mm0F, ppF3, 1, 0),

	// ---- shifts by immediate (group-encoded: destination in
	// EVEX.vvvv, source in ModRM.rm) ----
	{ShiftLeft, I16}:         shiftRow("vpsllw", 0x71, 0, 6, CapNarrowArith),
	{ShiftLeft, U16}:         shiftRow("vpsllw", 0x71, 0, 6, CapNarrowArith),
	{ShiftLeft, I32}:         shiftRow("vpslld", 0x72, 0, 6, 0),
	{ShiftLeft, U32}:         shiftRow("vpslld", 0x72, 0, 6, 0),
	{ShiftLeft, I64}:         shiftRow("vpsllq", 0x73, 1, 6, 0),
	{ShiftLeft, U64}:         shiftRow("vpsllq", 0x73, 1, 6, 0),
	{ShiftRightLogical, I16}: shiftRow("vpsrlw", 0x71, 0, 2, CapNarrowArith),
	{ShiftRightLogical, U16}: shiftRow("vpsrlw", 0x71, 0, 2, CapNarrowArith),
	{ShiftRightLogical, I32}: shiftRow("vpsrld", 0x72, 0, 2, 0),
	{ShiftRightLogical, U32}: shiftRow("vpsrld", 0x72, 0, 2, 0),
	{ShiftRightLogical, I64}: shiftRow("vpsrlq", 0x73, 1, 2, 0),
	{ShiftRightLogical, U64}: shiftRow("vpsrlq", 0x73, 1, 2, 0),
	{ShiftRightArith, I16}:   shiftRow("vpsraw", 0x71, 0, 4, CapNarrowArith),
	{ShiftRightArith, U16}:   shiftRow("vpsraw", 0x71, 0, 4, CapNarrowArith),
	{ShiftRightArith, I32}:   shiftRow("vpsrad", 0x72, 0, 4, 0),
	{ShiftRightArith, U32}:   shiftRow("vpsrad", 0x72, 0, 4, 0),
	{ShiftRightArith, I64}:   shiftRow("vpsraq", 0x72, 1, 4, 0),
	{ShiftRightArith, U64}:   shiftRow("vpsraq", 0x72, 1, 4, 0),

	// ---- per-lane variable shifts (no byte forms exist; byte lanes
	// round-trip through the scalar shifter) ----
	{ShiftLeftVar, I16}:         row("vpsllvw", 0x12, mm0F38, pp66, 1, CapNarrowVarShift),
	{ShiftLeftVar, U16}:         row("vpsllvw", 0x12, mm0F38, pp66, 1, CapNarrowVarShift),
	{ShiftLeftVar, I32}:         row("vpsllvd", 0x47, mm0F38, pp66, 0, 0),
	{ShiftLeftVar, U32}:         row("vpsllvd", 0x47, mm0F38, pp66, 0, 0),
	{ShiftLeftVar, I64}:         row("vpsllvq", 0x47, mm0F38, pp66, 1, 0),
	{ShiftLeftVar, U64}:         row("vpsllvq", 0x47, mm0F38, pp66, 1, 0),
	{ShiftRightLogicalVar, I16}: row("vpsrlvw", 0x10, mm0F38, pp66, 1, CapNarrowVarShift),
	{ShiftRightLogicalVar, U16}: row("vpsrlvw", 0x10, mm0F38, pp66, 1, CapNarrowVarShift),
	{ShiftRightLogicalVar, I32}: row("vpsrlvd", 0x45, mm0F38, pp66, 0, 0),
	{ShiftRightLogicalVar, U32}: row("vpsrlvd", 0x45, mm0F38, pp66, 0, 0),
	{ShiftRightLogicalVar, I64}: row("vpsrlvq", 0x45, mm0F38, pp66, 1, 0),
	{ShiftRightLogicalVar, U64}: row("vpsrlvq", 0x45, mm0F38, pp66, 1, 0),
	{ShiftRightArithVar, I16}:   row("vpsravw", 0x11, mm0F38, pp66, 1, CapNarrowVarShift),
	{ShiftRightArithVar, U16}:   row("vpsravw", 0x11, mm0F38, pp66, 1, CapNarrowVarShift),
	{ShiftRightArithVar, I32}:   row("vpsravd", 0x46, mm0F38, pp66, 0, 0),
	{ShiftRightArithVar, U32}:   row("vpsravd", 0x46, mm0F38, pp66, 0, 0),
	{ShiftRightArithVar, I64}:   row("vpsravq", 0x46, mm0F38, pp66, 1, 0),
	{ShiftRightArithVar, U64}:   row("vpsravq", 0x46, mm0F38, pp66, 1, 0),

	// ---- masked merge (dst = mask ? src2 : src1) ----
	{MaskedMerge, I8}:  row("vpblendmb", 0x66, mm0F38, pp66, 0, CapNarrowArith),
	{MaskedMerge, U8}:  row("vpblendmb", 0x66, mm0F38, pp66, 0, CapNarrowArith),
	{MaskedMerge, I16}: row("vpblendmw", 0x66, mm0F38, pp66, 1, CapNarrowArith),
	{MaskedMerge, U16}: row("vpblendmw", 0x66, mm0F38, pp66, 1, CapNarrowArith),
	{MaskedMerge, I32}: row("vpblendmd", 0x64, mm0F38, pp66, 0, 0),
	{MaskedMerge, U32}: row("vpblendmd", 0x64, mm0F38, pp66, 0, 0),
	{MaskedMerge, I64}: row("vpblendmq", 0x64, mm0F38, pp66, 1, 0),
	{MaskedMerge, U64}: row("vpblendmq", 0x64, mm0F38, pp66, 1, 0),
	{MaskedMerge, F32}: row("vblendmps", 0x65, mm0F38, pp66, 0, 0),
	{MaskedMerge, F64}: row("vblendmpd", 0x65, mm0F38, pp66, 1, 0),
}

// Float-typed bitwise logic encodings, active under SchemeFloatNative
// only. Same semantics as the integer rows above; never mixed with them
// within one lowering.
var x86FloatLogicTable = map[x86Key]x86Entry{
	{And, F32}:    row("vandps", 0x54, mm0F, ppNone, 0, CapFloatLogic),
	{And, F64}:    row("vandpd", 0x54, mm0F, pp66, 1, CapFloatLogic),
	{AndNot, F32}: row("vandnps", 0x55, mm0F, ppNone, 0, CapFloatLogic),
	{AndNot, F64}: row("vandnpd", 0x55, mm0F, pp66, 1, CapFloatLogic),
	{Or, F32}:     row("vorps", 0x56, mm0F, ppNone, 0, CapFloatLogic),
	{Or, F64}:     row("vorpd", 0x56, mm0F, pp66, 1, CapFloatLogic),
	{Xor, F32}:    row("vxorps", 0x57, mm0F, ppNone, 0, CapFloatLogic),
	{Xor, F64}:    row("vxorpd", 0x57, mm0F, pp66, 1, CapFloatLogic),
}

func moveRow(mn string, loadOpc, storeOpc, pp, w uint8) x86Entry {
	e := row(mn, loadOpc, mm0F, pp, w, 0)
	e.storeOpc = storeOpc
	return e
}

func notRow(w uint8) x86Entry {
	e := row("vpternlogd", 0x25, mm0F3A, pp66, w, 0)
	if w == 1 {
		e.mnemonic = "vpternlogq"
	}
	e.imm8 = 0x33 // ~B
	return e
}

func cvtRow(mn string, opc, pp, w uint8, altMn string, altOpc, altPP uint8) x86Entry {
	e := row(mn, opc, mm0F, pp, w, 0)
	e.altOpc = altOpc
	e.altPP = altPP
	e.altMn = altMn
	e.hasAlt = true
	return e
}
